package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/lynriescoop/cinema-booking/internal/model"
)

func showingRow(status string, booked uint32) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "movie_id", "room_id", "start_time", "end_time",
		"price_cents", "status", "booked_count", "created_at", "updated_at",
	}).AddRow(1, 2, 3, now.Add(time.Hour), now.Add(3*time.Hour), 1200, status, booked, now, now)
}

func TestReserveTxSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE showings s").
		WithArgs(2, 1, model.ShowingScheduled, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, _ := db.Begin()
	repo := NewShowingRepo(db)
	if err := repo.ReserveTx(context.Background(), tx, 1, 2); err != nil {
		t.Fatalf("ReserveTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveTxSoldOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE showings s").
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Follow-up read distinguishes sold-out from not-bookable.
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(showingRow(model.ShowingScheduled, 50))
	mock.ExpectRollback()

	tx, _ := db.Begin()
	repo := NewShowingRepo(db)
	err = repo.ReserveTx(context.Background(), tx, 1, 2)
	if !errors.Is(err, ErrSoldOut) {
		t.Fatalf("ReserveTx = %v, want ErrSoldOut", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveTxNotBookable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE showings s").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(showingRow(model.ShowingCancelled, 0))
	mock.ExpectRollback()

	tx, _ := db.Begin()
	repo := NewShowingRepo(db)
	err = repo.ReserveTx(context.Background(), tx, 1, 2)
	if !errors.Is(err, ErrShowingNotBookable) {
		t.Fatalf("ReserveTx = %v, want ErrShowingNotBookable", err)
	}
	_ = tx.Rollback()
}

func TestReserveTxMissingShowing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE showings s").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	tx, _ := db.Begin()
	repo := NewShowingRepo(db)
	err = repo.ReserveTx(context.Background(), tx, 99, 1)
	if !errors.Is(err, ErrShowingNotFound) {
		t.Fatalf("ReserveTx = %v, want ErrShowingNotFound", err)
	}
	_ = tx.Rollback()
}

func TestReleaseTxMissingShowing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE showings").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, _ := db.Begin()
	repo := NewShowingRepo(db)
	err = repo.ReleaseTx(context.Background(), tx, 99, 1)
	if !errors.Is(err, ErrShowingNotFound) {
		t.Fatalf("ReleaseTx = %v, want ErrShowingNotFound", err)
	}
	_ = tx.Rollback()
}

func TestFindOverlappingTxScopedToScheduled(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM showings").
		WithArgs(3, model.ShowingScheduled, start, end).
		WillReturnRows(showingRow(model.ShowingScheduled, 10))
	mock.ExpectRollback()

	tx, _ := db.Begin()
	repo := NewShowingRepo(db)
	got, err := repo.FindOverlappingTx(context.Background(), tx, 3, start, end)
	if err != nil {
		t.Fatalf("FindOverlappingTx: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("got %d overlaps, want the one scheduled showing", len(got))
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindOverlappingExcludingTxPassesExcludeID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM showings").
		WithArgs(3, model.ShowingScheduled, 42, start, end).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "movie_id", "room_id", "start_time", "end_time",
			"price_cents", "status", "booked_count", "created_at", "updated_at",
		}))
	mock.ExpectRollback()

	tx, _ := db.Begin()
	repo := NewShowingRepo(db)
	got, err := repo.FindOverlappingExcludingTx(context.Background(), tx, 3, start, end, 42)
	if err != nil {
		t.Fatalf("FindOverlappingExcludingTx: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d overlaps, want 0", len(got))
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteRefusesWithBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM showings WHERE id = \\? FOR UPDATE").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	repo := NewShowingRepo(db)
	if err := repo.Delete(context.Background(), 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("Delete = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// The no-bookings check and the delete share one transaction holding
// the showing row lock, so a booking committing concurrently cannot
// slip in between them.
func TestDeleteLocksRowThenRemoves(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM showings WHERE id = \\? FOR UPDATE").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM showings").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewShowingRepo(db)
	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteMissingShowing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM showings WHERE id = \\? FOR UPDATE").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	repo := NewShowingRepo(db)
	if err := repo.Delete(context.Background(), 99); !errors.Is(err, ErrShowingNotFound) {
		t.Fatalf("Delete = %v, want ErrShowingNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func showingRowAt(id uint64, start, end time.Time) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "movie_id", "room_id", "start_time", "end_time",
		"price_cents", "status", "booked_count", "created_at", "updated_at",
	}).AddRow(id, 2, 3, start, end, 1200, model.ShowingScheduled, 0, now, now)
}

// Conflict windows are half-open. A showing over [10:00, 12:00) must
// not conflict with a candidate [12:00, 13:00) even if the SQL
// prefilter hands the row back; a candidate [11:59, 12:30) must.
func TestFindOverlappingTxHalfOpenBoundary(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	existingStart := day.Add(10 * time.Hour)
	existingEnd := day.Add(12 * time.Hour)

	cases := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"back to back after", day.Add(12 * time.Hour), day.Add(13 * time.Hour), 0},
		{"back to back before", day.Add(9 * time.Hour), day.Add(10 * time.Hour), 0},
		{"one minute over", day.Add(11*time.Hour + 59*time.Minute), day.Add(12*time.Hour + 30*time.Minute), 1},
		{"contained", day.Add(10*time.Hour + 30*time.Minute), day.Add(11 * time.Hour), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock init error: %v", err)
			}
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT .+ FROM showings").
				WithArgs(3, model.ShowingScheduled, tc.start, tc.end).
				WillReturnRows(showingRowAt(7, existingStart, existingEnd))
			mock.ExpectRollback()

			tx, _ := db.Begin()
			repo := NewShowingRepo(db)
			got, err := repo.FindOverlappingTx(context.Background(), tx, 3, tc.start, tc.end)
			if err != nil {
				t.Fatalf("FindOverlappingTx: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d overlaps, want %d", len(got), tc.want)
			}
			_ = tx.Rollback()
		})
	}
}

func TestReleaseTxClampsAtZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SET booked_count = CASE WHEN booked_count >= \\?").
		WithArgs(2, 2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, _ := db.Begin()
	repo := NewShowingRepo(db)
	if err := repo.ReleaseTx(context.Background(), tx, 1, 2); err != nil {
		t.Fatalf("ReleaseTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
