package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/lynriescoop/cinema-booking/internal/model"
	"github.com/lynriescoop/cinema-booking/internal/repository"
)

func newShowingHandler(t *testing.T) (*ManagerShowingHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	h := NewManagerShowingHandler(db,
		repository.NewShowingRepo(db),
		repository.NewRoomRepo(db),
		repository.NewMovieRepo(db))
	return h, mock, func() { db.Close() }
}

func postJSON(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/manager/showings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func movieRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "tmdb_id", "title", "overview", "poster_path", "release_date",
		"runtime", "genres", "vote_average", "status", "created_at", "updated_at",
	}).AddRow(2, nil, "Blade Runner", nil, nil, nil, nil, "", 8.1, "Released", now, now)
}

func roomRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "cinema_id", "name", "capacity", "has_3d", "has_imax", "has_dolby", "created_at", "updated_at",
	}).AddRow(3, 1, "Room 1", 50, false, false, false, now, now)
}

func emptyShowingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "movie_id", "room_id", "start_time", "end_time",
		"price_cents", "status", "booked_count", "created_at", "updated_at",
	})
}

const validShowingBody = `{"movie_id":2,"room_id":3,"start_time":"2026-09-01T18:00:00Z","end_time":"2026-09-01T20:00:00Z","price_cents":1200}`

func TestCreateShowingSuccess(t *testing.T) {
	h, mock, closeDB := newShowingHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM movies WHERE id").WillReturnRows(movieRows())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM rooms WHERE id .+ FOR UPDATE").WillReturnRows(roomRows())
	mock.ExpectQuery("SELECT .+ FROM showings").WillReturnRows(emptyShowingRows())
	mock.ExpectExec("INSERT INTO showings").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	c, rec := postJSON(validShowingBody)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateShowingConflict(t *testing.T) {
	h, mock, closeDB := newShowingHandler(t)
	defer closeDB()

	now := time.Now().UTC()
	overlapping := emptyShowingRows().
		AddRow(9, 2, 3, now, now.Add(2*time.Hour), 1200, model.ShowingScheduled, 0, now, now)

	mock.ExpectQuery("SELECT .+ FROM movies WHERE id").WillReturnRows(movieRows())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM rooms WHERE id .+ FOR UPDATE").WillReturnRows(roomRows())
	mock.ExpectQuery("SELECT .+ FROM showings").WillReturnRows(overlapping)
	mock.ExpectRollback()

	c, rec := postJSON(validShowingBody)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "conflicting_with") {
		t.Fatalf("conflict body missing ids: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateShowingRejectsBadWindow(t *testing.T) {
	h, _, closeDB := newShowingHandler(t)
	defer closeDB()

	body := `{"movie_id":2,"room_id":3,"start_time":"2026-09-01T20:00:00Z","end_time":"2026-09-01T18:00:00Z","price_cents":1200}`
	c, rec := postJSON(body)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
