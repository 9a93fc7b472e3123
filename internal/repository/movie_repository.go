package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lynriescoop/cinema-booking/internal/model"
)

// MovieRepo manages persistence for the movie catalog. The catalog is
// read-mostly: showings only need an existence check, the import
// collaborator upserts metadata by TMDB id.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = `id, tmdb_id, title, overview, poster_path, release_date, runtime, genres, vote_average, status, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
	var m model.Movie
	var tmdbID sql.NullInt64
	var overview, poster sql.NullString
	var release sql.NullTime
	var runtime sql.NullInt32
	err := row.Scan(&m.ID, &tmdbID, &m.Title, &overview, &poster, &release,
		&runtime, &m.Genres, &m.VoteAverage, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tmdbID.Valid {
		v := tmdbID.Int64
		m.TMDBID = &v
	}
	if overview.Valid {
		v := overview.String
		m.Overview = &v
	}
	if poster.Valid {
		v := poster.String
		m.PosterPath = &v
	}
	if release.Valid {
		v := release.Time
		m.ReleaseDate = &v
	}
	if runtime.Valid {
		v := uint32(runtime.Int32)
		m.Runtime = &v
	}
	return &m, nil
}

// Create inserts a movie and assigns the generated ID back to the
// struct. Timestamps default in the DB.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (tmdb_id, title, overview, poster_path, release_date, runtime, genres, vote_average, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.TMDBID, m.Title, m.Overview, m.PosterPath,
		m.ReleaseDate, m.Runtime, m.Genres, m.VoteAverage, m.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID retrieves a movie by its ID. It returns ErrMovieNotFound if
// there is no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// List returns the catalog ordered by title. The optional status
// filter matches the catalog status column ("Released", "Coming Soon").
func (r *MovieRepo) List(ctx context.Context, status string) ([]*model.Movie, error) {
	q := `SELECT ` + movieColumns + ` FROM movies`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

