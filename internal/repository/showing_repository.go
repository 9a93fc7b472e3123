package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lynriescoop/cinema-booking/internal/model"
)

// ShowingRepo manages persistence for showings. It carries the ticket
// ledger: booked_count on each showing row is the canonical tally of
// reserved tickets, and ReserveTx/ReleaseTx are the only writers.
type ShowingRepo struct {
	db *sql.DB
}

// NewShowingRepo constructs a ShowingRepo with the given DB handle.
func NewShowingRepo(db *sql.DB) *ShowingRepo {
	return &ShowingRepo{db: db}
}

const showingColumns = `id, movie_id, room_id, start_time, end_time, price_cents, status, booked_count, created_at, updated_at`

func scanShowing(row interface{ Scan(...any) error }) (*model.Showing, error) {
	var s model.Showing
	err := row.Scan(&s.ID, &s.MovieID, &s.RoomID, &s.StartTime, &s.EndTime,
		&s.PriceCents, &s.Status, &s.BookedCount, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateTx inserts a showing inside an existing transaction. Used by
// the conflict-checked creation path, which must hold the room lock
// across the overlap query and the insert.
func (r *ShowingRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Showing) error {
	const q = `INSERT INTO showings (movie_id, room_id, start_time, end_time, price_cents, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.MovieID, s.RoomID, s.StartTime, s.EndTime, s.PriceCents, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID retrieves a showing by its ID, returning ErrShowingNotFound
// when no row matches.
func (r *ShowingRepo) GetByID(ctx context.Context, id uint64) (*model.Showing, error) {
	const q = `SELECT ` + showingColumns + ` FROM showings WHERE id = ?`
	s, err := scanShowing(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowingNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByIDTx is GetByID inside an existing transaction, without a row
// lock. ReserveTx itself serializes writers, so readers in the booking
// flow only need a consistent snapshot.
func (r *ShowingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Showing, error) {
	const q = `SELECT ` + showingColumns + ` FROM showings WHERE id = ?`
	s, err := scanShowing(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowingNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListByMovie returns scheduled showings for a movie starting after
// the given instant, soonest first.
func (r *ShowingRepo) ListByMovie(ctx context.Context, movieID uint64, after time.Time) ([]*model.Showing, error) {
	const q = `SELECT ` + showingColumns + ` FROM showings WHERE movie_id = ? AND status = ? AND start_time >= ? ORDER BY start_time ASC`
	return r.queryShowings(ctx, q, movieID, model.ShowingScheduled, after)
}

// ListByRoom returns all showings in a room within [from, to),
// regardless of status. Managers use this view when planning.
func (r *ShowingRepo) ListByRoom(ctx context.Context, roomID uint64, from, to time.Time) ([]*model.Showing, error) {
	const q = `SELECT ` + showingColumns + ` FROM showings WHERE room_id = ? AND start_time < ? AND end_time > ? ORDER BY start_time ASC`
	return r.queryShowings(ctx, q, roomID, to, from)
}

func (r *ShowingRepo) queryShowings(ctx context.Context, q string, args ...any) ([]*model.Showing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Showing
	for rows.Next() {
		s, err := scanShowing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindOverlappingTx returns scheduled showings in a room whose
// half-open interval [start_time, end_time) overlaps [start, end).
// Back-to-back showings where one ends exactly when the next starts do
// not overlap. Cancelled and completed showings never conflict.
//
// The SQL narrows the scan to the room's scheduled showings;
// model.Showing.Overlaps is the authoritative predicate and every
// candidate row passes through it.
func (r *ShowingRepo) FindOverlappingTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time) ([]*model.Showing, error) {
	const q = `SELECT ` + showingColumns + ` FROM showings
		WHERE room_id = ? AND status = ? AND NOT (end_time <= ? OR start_time >= ?)`
	rows, err := r.queryShowingsTx(ctx, tx, q, roomID, model.ShowingScheduled, start, end)
	if err != nil {
		return nil, err
	}
	return filterOverlapping(rows, start, end), nil
}

// FindOverlappingExcludingTx is FindOverlappingTx minus one showing,
// so an update does not report a conflict with itself.
func (r *ShowingRepo) FindOverlappingExcludingTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time, excludeID uint64) ([]*model.Showing, error) {
	const q = `SELECT ` + showingColumns + ` FROM showings
		WHERE room_id = ? AND status = ? AND id <> ? AND NOT (end_time <= ? OR start_time >= ?)`
	rows, err := r.queryShowingsTx(ctx, tx, q, roomID, model.ShowingScheduled, excludeID, start, end)
	if err != nil {
		return nil, err
	}
	return filterOverlapping(rows, start, end), nil
}

func filterOverlapping(rows []*model.Showing, start, end time.Time) []*model.Showing {
	out := rows[:0]
	for _, s := range rows {
		if s.Overlaps(start, end) {
			out = append(out, s)
		}
	}
	return out
}

func (r *ShowingRepo) queryShowingsTx(ctx context.Context, tx *sql.Tx, q string, args ...any) ([]*model.Showing, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Showing
	for rows.Next() {
		s, err := scanShowing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReserveTx atomically claims qty tickets on a scheduled showing. The
// conditional UPDATE joins the showing's room so the capacity check and
// the counter bump happen in a single statement under the row lock:
//
//	bump booked_count only if booked_count + qty <= capacity
//
// Zero rows affected means either the showing is missing or not
// scheduled (ErrShowingNotBookable) or there is not enough capacity
// left (ErrSoldOut); a follow-up read inside the same transaction
// tells the two apart.
func (r *ShowingRepo) ReserveTx(ctx context.Context, tx *sql.Tx, showingID uint64, qty uint32) error {
	const q = `UPDATE showings s
		JOIN rooms r ON r.id = s.room_id
		SET s.booked_count = s.booked_count + ?
		WHERE s.id = ? AND s.status = ? AND s.booked_count + ? <= r.capacity`
	res, err := tx.ExecContext(ctx, q, qty, showingID, model.ShowingScheduled, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	s, err := r.GetByIDTx(ctx, tx, showingID)
	if err != nil {
		return err
	}
	if s.Status != model.ShowingScheduled {
		return ErrShowingNotBookable
	}
	return ErrSoldOut
}

// ReleaseTx returns qty tickets to the pool, clamping at zero so a
// double release can never drive the tally negative.
func (r *ShowingRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, showingID uint64, qty uint32) error {
	const q = `UPDATE showings
		SET booked_count = CASE WHEN booked_count >= ? THEN booked_count - ? ELSE 0 END
		WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, qty, qty, showingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShowingNotFound
	}
	return nil
}

// UpdateScheduleTx rewrites a showing's room, times and price inside a
// transaction. The handler runs the overlap check first under the room
// lock; this only applies the result.
func (r *ShowingRepo) UpdateScheduleTx(ctx context.Context, tx *sql.Tx, s *model.Showing) error {
	const q = `UPDATE showings SET room_id = ?, start_time = ?, end_time = ?, price_cents = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, s.RoomID, s.StartTime, s.EndTime, s.PriceCents, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShowingNotFound
	}
	return nil
}

// SetStatus transitions a showing's lifecycle status.
func (r *ShowingRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	const q = `UPDATE showings SET status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShowingNotFound
	}
	return nil
}

// Delete removes a showing that has no bookings. A showing with any
// booking rows, even cancelled ones, returns ErrConflict; cancel the
// showing instead to keep the booking history intact.
//
// The whole check-then-delete runs in one transaction holding the
// showing row lock. ReserveTx takes the same lock, so a booking either
// commits before the lock is granted here and the count rejects the
// delete, or it blocks until the delete commits and then fails with
// ErrShowingNotFound.
func (r *ShowingRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM showings WHERE id = ? FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowingNotFound
		}
		return err
	}

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE showing_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM showings WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
