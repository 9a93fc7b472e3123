package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lynriescoop/cinema-booking/internal/model"
)

// SeatReservationRepo manages per-seat rows for showings that sell
// assigned seating. All writes ride the booking transaction so a seat
// grant is atomic with the ticket ledger.
type SeatReservationRepo struct {
	db *sql.DB
}

// NewSeatReservationRepo constructs a SeatReservationRepo with the
// given DB handle.
func NewSeatReservationRepo(db *sql.DB) *SeatReservationRepo {
	return &SeatReservationRepo{db: db}
}

const seatColumns = `id, booking_id, showing_id, row_label, seat_number, price_cents, status, expires_at, created_at, updated_at`

func scanSeat(row interface{ Scan(...any) error }) (*model.SeatReservation, error) {
	var sr model.SeatReservation
	var expires sql.NullTime
	err := row.Scan(&sr.ID, &sr.BookingID, &sr.ShowingID, &sr.Row, &sr.Number,
		&sr.PriceCents, &sr.Status, &expires, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		sr.ExpiresAt = &expires.Time
	}
	return &sr, nil
}

// TakenSeatsTx returns, for the requested seats, the labels already
// held by a live reservation on the showing. Rows whose reservation
// was released by a cancellation do not count. Runs with FOR UPDATE so
// two concurrent bookings asking for the same seat serialize here.
func (r *SeatReservationRepo) TakenSeatsTx(ctx context.Context, tx *sql.Tx, showingID uint64, seats []model.SeatRef) ([]string, error) {
	if len(seats) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString(`SELECT row_label, seat_number FROM seat_reservations WHERE showing_id = ? AND status IN (?, ?) AND (`)
	args := []any{showingID, model.SeatReserved, model.SeatBooked}
	for i, s := range seats {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteString("(row_label = ? AND seat_number = ?)")
		args = append(args, s.Row, s.Number)
	}
	sb.WriteString(") FOR UPDATE")

	rows, err := tx.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var taken []string
	for rows.Next() {
		var label string
		var number uint32
		if err := rows.Scan(&label, &number); err != nil {
			return nil, err
		}
		taken = append(taken, fmt.Sprintf("%s%d", label, number))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return taken, nil
}

// CreateBulkTx inserts one reservation row per seat in a single
// statement. Called only after TakenSeatsTx came back empty inside the
// same transaction.
func (r *SeatReservationRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, bookingID, showingID uint64, seats []model.SeatRef, priceCents uint32) error {
	if len(seats) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO seat_reservations (booking_id, showing_id, row_label, seat_number, price_cents, status) VALUES `)
	args := make([]any, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, bookingID, showingID, s.Row, s.Number, priceCents, model.SeatBooked)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// ReleaseByBookingTx frees every seat held by a booking, used by the
// cancellation flow inside the same transaction that releases the
// ticket ledger.
func (r *SeatReservationRepo) ReleaseByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	const q = `UPDATE seat_reservations SET status = ? WHERE booking_id = ? AND status IN (?, ?)`
	_, err := tx.ExecContext(ctx, q, model.SeatAvailable, bookingID, model.SeatReserved, model.SeatBooked)
	return err
}

// ListByBooking returns a booking's seats ordered for display on the
// ticket.
func (r *SeatReservationRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]*model.SeatReservation, error) {
	const q = `SELECT ` + seatColumns + ` FROM seat_reservations WHERE booking_id = ? ORDER BY row_label ASC, seat_number ASC`
	return r.querySeats(ctx, q, bookingID)
}

// ListTakenByShowing returns every live seat reservation for a
// showing, the data behind the public seat map.
func (r *SeatReservationRepo) ListTakenByShowing(ctx context.Context, showingID uint64) ([]*model.SeatReservation, error) {
	const q = `SELECT ` + seatColumns + ` FROM seat_reservations WHERE showing_id = ? AND status IN (?, ?) ORDER BY row_label ASC, seat_number ASC`
	return r.querySeats(ctx, q, showingID, model.SeatReserved, model.SeatBooked)
}

func (r *SeatReservationRepo) querySeats(ctx context.Context, q string, args ...any) ([]*model.SeatReservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.SeatReservation
	for rows.Next() {
		sr, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
