package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lynriescoop/cinema-booking/internal/model"
)

// CinemaRepo provides methods to create and retrieve cinemas.
type CinemaRepo struct {
	db *sql.DB
}

// NewCinemaRepo constructs a CinemaRepo with the given DB handle.
func NewCinemaRepo(db *sql.DB) *CinemaRepo {
	return &CinemaRepo{db: db}
}

const cinemaColumns = `id, name, address, city, postal_code, phone, is_active, created_at, updated_at`

func scanCinema(row interface{ Scan(...any) error }) (*model.Cinema, error) {
	var c model.Cinema
	var postal, phone sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &postal, &phone,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if postal.Valid {
		v := postal.String
		c.PostalCode = &v
	}
	if phone.Valid {
		v := phone.String
		c.Phone = &v
	}
	return &c, nil
}

// Create inserts a new cinema and assigns the generated ID.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema) error {
	const q = `INSERT INTO cinemas (name, address, city, postal_code, phone) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Address, c.City, c.PostalCode, c.Phone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID retrieves a cinema by its ID, returning ErrCinemaNotFound
// when no row matches.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
	const q = `SELECT ` + cinemaColumns + ` FROM cinemas WHERE id = ?`
	c, err := scanCinema(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCinemaNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns all active cinemas ordered by name. Used by the public
// browse endpoints.
func (r *CinemaRepo) List(ctx context.Context) ([]*model.Cinema, error) {
	const q = `SELECT ` + cinemaColumns + ` FROM cinemas WHERE is_active = 1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Cinema
	for rows.Next() {
		c, err := scanCinema(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a cinema's profile fields.
func (r *CinemaRepo) Update(ctx context.Context, c *model.Cinema) error {
	const q = `UPDATE cinemas SET name = ?, address = ?, city = ?, postal_code = ?, phone = ?, is_active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Address, c.City, c.PostalCode, c.Phone, c.IsActive, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCinemaNotFound
	}
	return nil
}
