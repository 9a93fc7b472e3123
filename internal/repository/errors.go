// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: a
// sold-out showing must map to a client error the caller may not
// retry, while a commit failure is a server error with every partial
// write rolled back.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMovieNotFound indicates that a movie lookup matched no row.
var ErrMovieNotFound = errors.New("movie not found")

// ErrCinemaNotFound indicates that a cinema lookup matched no row.
var ErrCinemaNotFound = errors.New("cinema not found")

// ErrRoomNotFound indicates that a room lookup matched no row.
var ErrRoomNotFound = errors.New("room not found")

// ErrShowingNotFound indicates that a showing lookup matched no row.
var ErrShowingNotFound = errors.New("showing not found")

// ErrBookingNotFound indicates that a booking lookup matched no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrShowingNotBookable is returned when a booking targets a showing
// whose status is no longer scheduled (cancelled or completed).
var ErrShowingNotBookable = errors.New("showing not bookable")

// ErrSoldOut is returned by the ticket ledger when reserving the
// requested quantity would push booked_count past the room capacity.
// No mutation has occurred when this error is returned.
var ErrSoldOut = errors.New("sold out")

// ErrTimeConflict is returned when a showing's time window overlaps
// another scheduled showing in the same room. Handlers translate this
// into an HTTP 409 response.
var ErrTimeConflict = errors.New("time conflict in room")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a showing that still
// has bookings. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrNoChange indicates a state transition found no row in an
// applicable state, such as cancelling a booking that is already
// cancelled.
var ErrNoChange = errors.New("no change")

// SeatUnavailableError reports the requested seats that already carry
// an active reservation. The multi-seat grant is all-or-nothing, so
// none of the requested seats have been reserved when this error is
// returned.
type SeatUnavailableError struct {
	Seats []string // seat labels, e.g. "A1"
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.Seats, ", "))
}
