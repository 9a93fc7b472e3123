// Package handler defines the HTTP handlers behind the REST API.
// Handlers bind and validate input, delegate to repositories or the
// booking coordinator, and translate domain errors to HTTP responses.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lynriescoop/cinema-booking/internal/booking"
	"github.com/lynriescoop/cinema-booking/internal/middleware"
	"github.com/lynriescoop/cinema-booking/internal/repository"
)

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// authedUserID pulls the authenticated user's ID out of the context.
func authedUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		return 0, errors.New("unauthorized")
	}
	return id, nil
}

// fail maps domain errors onto HTTP responses. Unrecognized errors
// become 500 with a generic message so internals never leak.
func fail(c echo.Context, err error) error {
	var ve *booking.ValidationError
	var se *repository.SeatUnavailableError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
	case errors.As(err, &se):
		return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are unavailable", "seats": se.Seats})
	case errors.Is(err, repository.ErrMovieNotFound),
		errors.Is(err, repository.ErrCinemaNotFound),
		errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrShowingNotFound),
		errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSoldOut):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough tickets left"})
	case errors.Is(err, repository.ErrShowingNotBookable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "showing is not open for booking"})
	case errors.Is(err, repository.ErrTimeConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time conflict with another showing in this room"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource has dependent records"})
	case errors.Is(err, repository.ErrNoChange):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no applicable change"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
