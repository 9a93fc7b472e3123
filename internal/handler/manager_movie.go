package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lynriescoop/cinema-booking/internal/model"
	"github.com/lynriescoop/cinema-booking/internal/repository"
)

// ManagerMovieHandler lets managers register movies so showings can
// reference them. Catalog editing beyond that is out of scope; titles
// arrive via the TMDB import.
type ManagerMovieHandler struct {
	Movies *repository.MovieRepo
}

func NewManagerMovieHandler(movies *repository.MovieRepo) *ManagerMovieHandler {
	if movies == nil {
		panic("nil repository passed to NewManagerMovieHandler")
	}
	return &ManagerMovieHandler{Movies: movies}
}

type movieReq struct {
	TMDBID      *int64   `json:"tmdb_id"`
	Title       string   `json:"title"`
	Overview    *string  `json:"overview"`
	PosterPath  *string  `json:"poster_path"`
	ReleaseDate *string  `json:"release_date"`
	Runtime     *uint32  `json:"runtime_minutes"`
	Genres      []string `json:"genres"`
	VoteAverage float64  `json:"vote_average"`
	Status      string   `json:"status"`
}

// apply validates the request and fills m, returning a client-facing
// message on bad input and "" on success.
func (r *movieReq) apply(m *model.Movie) string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title required"
	}
	m.TMDBID = r.TMDBID
	m.Title = r.Title
	m.Overview = r.Overview
	m.PosterPath = r.PosterPath
	m.ReleaseDate = nil
	if r.ReleaseDate != nil && *r.ReleaseDate != "" {
		t, err := time.Parse("2006-01-02", *r.ReleaseDate)
		if err != nil {
			return "release_date must be YYYY-MM-DD"
		}
		m.ReleaseDate = &t
	}
	m.Runtime = r.Runtime
	m.Genres = strings.Join(r.Genres, ",")
	m.VoteAverage = r.VoteAverage
	m.Status = strings.TrimSpace(r.Status)
	if m.Status == "" {
		m.Status = "Released"
	}
	return ""
}

// Create handles POST /v1/manager/movies.
func (h *ManagerMovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var m model.Movie
	if msg := req.apply(&m); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Movies.Create(c.Request().Context(), &m); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

