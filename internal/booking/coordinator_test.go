package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/lynriescoop/cinema-booking/internal/model"
	"github.com/lynriescoop/cinema-booking/internal/notifier"
	"github.com/lynriescoop/cinema-booking/internal/repository"
)

var showingCols = []string{
	"id", "movie_id", "room_id", "start_time", "end_time",
	"price_cents", "status", "booked_count", "created_at", "updated_at",
}

func futureShowingRows(status string, booked uint32) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(showingCols).
		AddRow(1, 2, 3, now.Add(time.Hour), now.Add(3*time.Hour), 1200, status, booked, now, now)
}

func detailRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"b_id", "b_user_id", "b_showing_id", "b_number", "b_tickets", "b_total", "b_status", "b_created", "b_updated",
		"s_id", "s_movie_id", "s_room_id", "s_start", "s_end", "s_price", "s_status", "s_booked", "s_created", "s_updated",
		"movie_title", "room_name", "cinema_name", "user_name",
	}).AddRow(
		7, 5, 1, "K7PQ2M9A", 2, 2400, model.BookingConfirmed, now, now,
		1, 2, 3, now.Add(time.Hour), now.Add(3*time.Hour), 1200, model.ShowingScheduled, 12, now, now,
		"Blade Runner", "Room 1", "Grand Central", "Ada",
	)
}

func newTestCoordinator(t *testing.T, db *sql.DB) *Coordinator {
	t.Helper()
	return NewCoordinator(db,
		repository.NewShowingRepo(db),
		repository.NewBookingRepo(db),
		repository.NewSeatReservationRepo(db),
		repository.NewRoomRepo(db),
		repository.NewUserRepo(db),
		notifier.NewHub(),
		nil)
}

func TestCreateConfirmsBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(futureShowingRows(model.ShowingScheduled, 10))
	mock.ExpectExec("UPDATE showings s").
		WithArgs(2, uint64(1), model.ShowingScheduled, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE bookings SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Post-commit: availability snapshot and confirmation detail.
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(futureShowingRows(model.ShowingScheduled, 12))
	mock.ExpectQuery("SELECT .+ FROM rooms WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "cinema_id", "name", "capacity", "has_3d", "has_imax", "has_dolby", "created_at", "updated_at",
		}).AddRow(3, 1, "Room 1", 50, false, false, false, time.Now(), time.Now()))
	mock.ExpectQuery("FROM bookings b").
		WillReturnRows(detailRows())

	co := newTestCoordinator(t, db)
	conf, err := co.Create(context.Background(), Request{UserID: 5, ShowingID: 1, TicketCount: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conf.Booking.Status != model.BookingConfirmed {
		t.Fatalf("status = %q, want confirmed", conf.Booking.Status)
	}
	if conf.Booking.TotalPriceCents != 2400 {
		t.Fatalf("total = %d, want 2400", conf.Booking.TotalPriceCents)
	}
	if conf.Detail == nil || conf.Detail.MovieTitle != "Blade Runner" {
		t.Fatalf("detail not populated: %+v", conf.Detail)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSoldOutRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(futureShowingRows(model.ShowingScheduled, 49))
	mock.ExpectExec("UPDATE showings s").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(futureShowingRows(model.ShowingScheduled, 49))
	mock.ExpectRollback()

	co := newTestCoordinator(t, db)
	_, err = co.Create(context.Background(), Request{UserID: 5, ShowingID: 1, TicketCount: 2})
	if !errors.Is(err, repository.ErrSoldOut) {
		t.Fatalf("Create = %v, want ErrSoldOut", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSeatConflictRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(futureShowingRows(model.ShowingScheduled, 10))
	mock.ExpectExec("UPDATE showings s").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT row_label, seat_number FROM seat_reservations").
		WillReturnRows(sqlmock.NewRows([]string{"row_label", "seat_number"}).AddRow("A", 1))
	mock.ExpectRollback()

	co := newTestCoordinator(t, db)
	_, err = co.Create(context.Background(), Request{UserID: 5, ShowingID: 1, Seats: []string{"A1", "A2"}})
	var se *repository.SeatUnavailableError
	if !errors.As(err, &se) {
		t.Fatalf("Create = %v, want SeatUnavailableError", err)
	}
	if len(se.Seats) != 1 || se.Seats[0] != "A1" {
		t.Fatalf("conflicting seats = %v, want [A1]", se.Seats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRejectsBadRequests(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	co := newTestCoordinator(t, db)

	cases := []Request{
		{UserID: 5, ShowingID: 1},                                                  // no count, no seats
		{UserID: 5, ShowingID: 1, TicketCount: MaxTicketsPerBooking + 1},           // over cap
		{UserID: 5, ShowingID: 1, TicketCount: 3, Seats: []string{"A1", "A2"}},     // count/seat mismatch
		{UserID: 5, ShowingID: 1, Seats: []string{"A1", "A1"}},                     // duplicate seat
		{UserID: 5, ShowingID: 1, Seats: []string{"1A"}},                           // malformed seat
	}
	for _, req := range cases {
		_, err := co.Create(context.Background(), req)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("Create(%+v) = %v, want ValidationError", req, err)
		}
	}
}

func TestCancelReleasesTickets(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	bookingRows := sqlmock.NewRows([]string{
		"id", "user_id", "showing_id", "booking_number", "ticket_count",
		"total_price_cents", "status", "created_at", "updated_at",
	}).AddRow(7, 5, 1, "K7PQ2M9A", 2, 2400, model.BookingConfirmed, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM bookings WHERE id .+ FOR UPDATE").
		WillReturnRows(bookingRows)
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(futureShowingRows(model.ShowingScheduled, 12))
	mock.ExpectExec("UPDATE bookings SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE showings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE seat_reservations").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	// Post-commit availability snapshot.
	mock.ExpectQuery("SELECT .+ FROM showings WHERE id").
		WillReturnRows(futureShowingRows(model.ShowingScheduled, 10))
	mock.ExpectQuery("SELECT .+ FROM rooms WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "cinema_id", "name", "capacity", "has_3d", "has_imax", "has_dolby", "created_at", "updated_at",
		}).AddRow(3, 1, "Room 1", 50, false, false, false, now, now))

	co := newTestCoordinator(t, db)
	if err := co.Cancel(context.Background(), 7, 5); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelForeignBookingForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM bookings WHERE id .+ FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "showing_id", "booking_number", "ticket_count",
			"total_price_cents", "status", "created_at", "updated_at",
		}).AddRow(7, 99, 1, "K7PQ2M9A", 2, 2400, model.BookingConfirmed, now, now))
	mock.ExpectRollback()

	co := newTestCoordinator(t, db)
	if err := co.Cancel(context.Background(), 7, 5); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("Cancel = %v, want ErrForbidden", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
