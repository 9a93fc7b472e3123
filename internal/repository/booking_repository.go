package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lynriescoop/cinema-booking/internal/model"
)

// BookingRepo manages persistence for bookings. Writes that must be
// atomic with the ticket ledger take a *sql.Tx so the coordinator can
// run them inside the booking transaction.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, user_id, showing_id, booking_number, ticket_count, total_price_cents, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.ShowingID, &b.BookingNumber, &b.TicketCount,
		&b.TotalPriceCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateTx inserts a booking inside the booking transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, showing_id, booking_number, ticket_count, total_price_cents, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.ShowingID, b.BookingNumber, b.TicketCount, b.TotalPriceCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// BookingNumberExistsTx reports whether a booking number is already
// taken. The coordinator retries with a fresh number on collision.
func (r *BookingRepo) BookingNumberExistsTx(ctx context.Context, tx *sql.Tx, number string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_number = ?)`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, number).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ConfirmTx flips a pending booking to confirmed inside the booking
// transaction, just before commit.
func (r *BookingRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.BookingConfirmed, bookingID, model.BookingPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// GetByID retrieves a booking by its ID, returning ErrBookingNotFound
// when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByIDTx is GetByID inside an existing transaction with an
// exclusive row lock, used by the cancellation flow so two concurrent
// cancels of the same booking cannot both release tickets.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// BookingDetail is a booking joined with its showing and movie, the
// shape the my-bookings listing and the e-ticket renderer need.
type BookingDetail struct {
	Booking    model.Booking
	Showing    model.Showing
	MovieTitle string
	RoomName   string
	CinemaName string
	UserName   string
}

const bookingDetailQuery = `SELECT
	b.id, b.user_id, b.showing_id, b.booking_number, b.ticket_count, b.total_price_cents, b.status, b.created_at, b.updated_at,
	s.id, s.movie_id, s.room_id, s.start_time, s.end_time, s.price_cents, s.status, s.booked_count, s.created_at, s.updated_at,
	m.title, r.name, c.name, u.name
	FROM bookings b
	JOIN showings s ON s.id = b.showing_id
	JOIN movies m ON m.id = s.movie_id
	JOIN rooms r ON r.id = s.room_id
	JOIN cinemas c ON c.id = r.cinema_id
	JOIN users u ON u.id = b.user_id`

func scanBookingDetail(row interface{ Scan(...any) error }) (*BookingDetail, error) {
	var d BookingDetail
	err := row.Scan(
		&d.Booking.ID, &d.Booking.UserID, &d.Booking.ShowingID, &d.Booking.BookingNumber,
		&d.Booking.TicketCount, &d.Booking.TotalPriceCents, &d.Booking.Status,
		&d.Booking.CreatedAt, &d.Booking.UpdatedAt,
		&d.Showing.ID, &d.Showing.MovieID, &d.Showing.RoomID, &d.Showing.StartTime,
		&d.Showing.EndTime, &d.Showing.PriceCents, &d.Showing.Status,
		&d.Showing.BookedCount, &d.Showing.CreatedAt, &d.Showing.UpdatedAt,
		&d.MovieTitle, &d.RoomName, &d.CinemaName, &d.UserName,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByUser returns the caller's bookings with showing context,
// newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*BookingDetail, error) {
	const q = bookingDetailQuery + ` WHERE b.user_id = ? ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*BookingDetail
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDetailForUser loads one booking with showing context, enforcing
// ownership. A booking that exists but belongs to someone else returns
// ErrForbidden so handlers can answer 403 instead of leaking 404.
func (r *BookingRepo) GetDetailForUser(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
	const q = bookingDetailQuery + ` WHERE b.id = ?`
	d, err := scanBookingDetail(r.db.QueryRowContext(ctx, q, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if d.Booking.UserID != userID {
		return nil, ErrForbidden
	}
	return d, nil
}

// CancelTx flips a confirmed or pending booking to cancelled inside
// the cancellation transaction. Rows already cancelled or completed
// return ErrNoChange so the caller does not release tickets twice.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status IN (?, ?)`
	res, err := tx.ExecContext(ctx, q, model.BookingCancelled, bookingID, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoChange
	}
	return nil
}
