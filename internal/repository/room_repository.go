package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lynriescoop/cinema-booking/internal/model"
)

// RoomRepo manages persistence for rooms. Room capacity is the ceiling
// the ticket ledger enforces; it is never updated here once showings
// reference the room.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, cinema_id, name, capacity, has_3d, has_imax, has_dolby, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var rm model.Room
	err := row.Scan(&rm.ID, &rm.CinemaID, &rm.Name, &rm.Capacity,
		&rm.Has3D, &rm.HasIMAX, &rm.HasDolby, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

// Create inserts a new room. Capacity must be positive; the caller
// validates before reaching the repository.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (cinema_id, name, capacity, has_3d, has_imax, has_dolby) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.CinemaID, rm.Name, rm.Capacity, rm.Has3D, rm.HasIMAX, rm.HasDolby)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// GetByID retrieves a room by its ID, returning ErrRoomNotFound when
// no row matches.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// LockByIDTx loads a room inside the given transaction with an
// exclusive row lock. The conflict checker takes this lock before the
// overlap query so that two concurrent showing creations for the same
// room cannot interleave between check and insert.
func (r *RoomRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? FOR UPDATE`
	rm, err := scanRoom(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// ListByCinema returns all rooms inside a cinema ordered by name.
func (r *RoomRepo) ListByCinema(ctx context.Context, cinemaID uint64) ([]*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE cinema_id = ? ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, cinemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
