package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lynriescoop/cinema-booking/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: the movie
// catalog, cinemas, upcoming showings and per-showing availability.
type PublicHandler struct {
	Movies   *repository.MovieRepo
	Cinemas  *repository.CinemaRepo
	Rooms    *repository.RoomRepo
	Showings *repository.ShowingRepo
	Seats    *repository.SeatReservationRepo
}

func NewPublicHandler(movies *repository.MovieRepo, cinemas *repository.CinemaRepo, rooms *repository.RoomRepo,
	showings *repository.ShowingRepo, seats *repository.SeatReservationRepo) *PublicHandler {
	if movies == nil || cinemas == nil || rooms == nil || showings == nil || seats == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Movies: movies, Cinemas: cinemas, Rooms: rooms, Showings: showings, Seats: seats}
}

// ListMovies handles GET /v1/movies?status=.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": movies})
}

// GetMovie handles GET /v1/movies/:id.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// ListCinemas handles GET /v1/cinemas.
func (h *PublicHandler) ListCinemas(c echo.Context) error {
	cinemas, err := h.Cinemas.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cinemas": cinemas})
}

// ListShowings handles GET /v1/movies/:id/showings and returns the
// movie's upcoming scheduled showings.
func (h *PublicHandler) ListShowings(c echo.Context) error {
	movieID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	showings, err := h.Showings.ListByMovie(c.Request().Context(), movieID, time.Now().UTC())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"showings": showings})
}

// GetShowing handles GET /v1/showings/:id with an availability
// snapshot folded in.
func (h *PublicHandler) GetShowing(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	s, err := h.Showings.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	room, err := h.Rooms.GetByID(ctx, s.RoomID)
	if err != nil {
		return fail(c, err)
	}
	var available uint32
	if room.Capacity > s.BookedCount {
		available = room.Capacity - s.BookedCount
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showing":           s,
		"room":              room,
		"available_tickets": available,
		"total_capacity":    room.Capacity,
	})
}

// GetSeatMap handles GET /v1/showings/:id/seats and lists the seats
// already taken so a client can render the picker.
func (h *PublicHandler) GetSeatMap(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	if _, err := h.Showings.GetByID(ctx, id); err != nil {
		return fail(c, err)
	}
	taken, err := h.Seats.ListTakenByShowing(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	labels := make([]string, len(taken))
	for i, sr := range taken {
		labels[i] = sr.Label()
	}
	return c.JSON(http.StatusOK, echo.Map{"showing_id": id, "taken_seats": labels})
}
