// Package booking orchestrates the booking lifecycle: validation,
// capacity reservation, optional seat grants, persistence and the
// post-commit fan-out to subscribers and the message broker.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lynriescoop/cinema-booking/internal/metrics"
	"github.com/lynriescoop/cinema-booking/internal/model"
	"github.com/lynriescoop/cinema-booking/internal/notifier"
	"github.com/lynriescoop/cinema-booking/internal/queue"
	"github.com/lynriescoop/cinema-booking/internal/repository"
	"github.com/lynriescoop/cinema-booking/internal/utils"
)

// MaxTicketsPerBooking caps a single booking. Larger groups book twice.
const MaxTicketsPerBooking = 10

// bookingNumberRetries bounds how often a colliding booking number is
// regenerated before the transaction is abandoned.
const bookingNumberRetries = 5

// ValidationError marks a request the client can fix and resubmit.
// Handlers map it to HTTP 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// EventPublisher emits booking events to the broker. Failures after
// commit are logged, never surfaced to the customer.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Coordinator runs every state-changing booking operation inside a
// single database transaction so the ticket ledger, the booking row
// and its seat rows always move together.
//
// Fields:
//
//	db        – handle transactions are started on.
//	showings  – ticket ledger and showing lookups.
//	bookings  – booking persistence.
//	seats     – per-seat reservation rows.
//	rooms     – capacity lookups for availability snapshots.
//	users     – contact details for confirmation events.
//	hub       – in-process availability fan-out.
//	publisher – broker publisher for booking.confirmed.
type Coordinator struct {
	db        *sql.DB
	showings  *repository.ShowingRepo
	bookings  *repository.BookingRepo
	seats     *repository.SeatReservationRepo
	rooms     *repository.RoomRepo
	users     *repository.UserRepo
	hub       *notifier.Hub
	publisher EventPublisher
}

// NewCoordinator wires a Coordinator. All dependencies must be
// non-nil except publisher, which may be nil to disable broker events.
func NewCoordinator(db *sql.DB, showings *repository.ShowingRepo, bookings *repository.BookingRepo,
	seats *repository.SeatReservationRepo, rooms *repository.RoomRepo, users *repository.UserRepo,
	hub *notifier.Hub, publisher EventPublisher) *Coordinator {
	if db == nil || showings == nil || bookings == nil || seats == nil || rooms == nil || users == nil || hub == nil {
		panic("nil dependency passed to NewCoordinator")
	}
	return &Coordinator{
		db:        db,
		showings:  showings,
		bookings:  bookings,
		seats:     seats,
		rooms:     rooms,
		users:     users,
		hub:       hub,
		publisher: publisher,
	}
}

// Request is a customer's booking attempt. Seats may be empty for
// free-seating showings; when present, TicketCount must equal the
// number of seats (or be zero, in which case it is derived).
type Request struct {
	UserID      uint64
	ShowingID   uint64
	TicketCount uint32
	Seats       []string
}

// Confirmation is the result of a successful booking.
type Confirmation struct {
	Booking model.Booking
	Seats   []model.SeatRef
	Detail  *repository.BookingDetail
}

// Create books tickets. On success the booking is committed and
// confirmed before any notification goes out; notification failures
// are logged and swallowed. On any error the transaction is rolled
// back and nothing is reserved.
func (co *Coordinator) Create(ctx context.Context, req Request) (*Confirmation, error) {
	seats, qty, err := normalize(req)
	if err != nil {
		metrics.BookingRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}

	tx, err := co.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.BookingRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	showing, err := co.showings.GetByIDTx(ctx, tx, req.ShowingID)
	if err != nil {
		metrics.BookingRequests.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	if showing.Status != model.ShowingScheduled || !time.Now().UTC().Before(showing.StartTime) {
		metrics.BookingRequests.WithLabelValues("not_bookable").Inc()
		return nil, repository.ErrShowingNotBookable
	}

	// Ledger first: the conditional UPDATE locks the showing row, so
	// every later step in this transaction runs serialized per showing.
	if err := co.showings.ReserveTx(ctx, tx, showing.ID, qty); err != nil {
		metrics.BookingRequests.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}

	if len(seats) > 0 {
		taken, err := co.seats.TakenSeatsTx(ctx, tx, showing.ID, seats)
		if err != nil {
			metrics.BookingRequests.WithLabelValues("error").Inc()
			return nil, err
		}
		if len(taken) > 0 {
			metrics.BookingRequests.WithLabelValues("seat_conflict").Inc()
			return nil, &repository.SeatUnavailableError{Seats: taken}
		}
	}

	number, err := co.uniqueBookingNumber(ctx, tx)
	if err != nil {
		metrics.BookingRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	b := &model.Booking{
		UserID:          req.UserID,
		ShowingID:       showing.ID,
		BookingNumber:   number,
		TicketCount:     qty,
		TotalPriceCents: showing.PriceCents * qty,
		Status:          model.BookingPending,
	}
	if err := co.bookings.CreateTx(ctx, tx, b); err != nil {
		metrics.BookingRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(seats) > 0 {
		if err := co.seats.CreateBulkTx(ctx, tx, b.ID, showing.ID, seats, showing.PriceCents); err != nil {
			metrics.BookingRequests.WithLabelValues("error").Inc()
			return nil, err
		}
	}
	if err := co.bookings.ConfirmTx(ctx, tx, b.ID); err != nil {
		metrics.BookingRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		metrics.BookingRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	committed = true
	b.Status = model.BookingConfirmed

	metrics.BookingRequests.WithLabelValues("confirmed").Inc()
	metrics.TicketsReserved.Add(float64(qty))

	// Post-commit, best effort from here on.
	co.notifyAvailability(ctx, showing.ID)
	detail := co.publishConfirmed(ctx, b, seats)

	return &Confirmation{Booking: *b, Seats: seats, Detail: detail}, nil
}

// Cancel voids a booking owned by userID and returns its tickets and
// seats to the pool in the same transaction.
func (co *Coordinator) Cancel(ctx context.Context, bookingID, userID uint64) error {
	tx, err := co.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// FOR UPDATE so a concurrent cancel of the same booking waits here
	// and then fails on the status guard instead of double-releasing.
	b, err := co.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return repository.ErrForbidden
	}
	showing, err := co.showings.GetByIDTx(ctx, tx, b.ShowingID)
	if err != nil {
		return err
	}
	if !time.Now().UTC().Before(showing.StartTime) {
		return &ValidationError{Msg: "showing has already started"}
	}

	if err := co.bookings.CancelTx(ctx, tx, b.ID); err != nil {
		return err
	}
	if err := co.showings.ReleaseTx(ctx, tx, b.ShowingID, b.TicketCount); err != nil {
		return err
	}
	if err := co.seats.ReleaseByBookingTx(ctx, tx, b.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	metrics.BookingsCancelled.Inc()
	metrics.TicketsReserved.Sub(float64(b.TicketCount))
	co.notifyAvailability(ctx, b.ShowingID)
	return nil
}

// normalize validates a request and reconciles seats with the ticket
// count.
func normalize(req Request) ([]model.SeatRef, uint32, error) {
	seats, err := ParseSeats(req.Seats)
	if err != nil {
		return nil, 0, &ValidationError{Msg: err.Error()}
	}
	qty := req.TicketCount
	if len(seats) > 0 {
		n := uint32(len(seats))
		if qty == 0 {
			qty = n
		} else if qty != n {
			return nil, 0, &ValidationError{Msg: fmt.Sprintf("ticket_count %d does not match %d seats", qty, n)}
		}
	}
	if qty == 0 {
		return nil, 0, &ValidationError{Msg: "ticket_count must be at least 1"}
	}
	if qty > MaxTicketsPerBooking {
		return nil, 0, &ValidationError{Msg: fmt.Sprintf("at most %d tickets per booking", MaxTicketsPerBooking)}
	}
	return seats, qty, nil
}

func (co *Coordinator) uniqueBookingNumber(ctx context.Context, tx *sql.Tx) (string, error) {
	for i := 0; i < bookingNumberRetries; i++ {
		number, err := utils.NewBookingNumber()
		if err != nil {
			return "", err
		}
		exists, err := co.bookings.BookingNumberExistsTx(ctx, tx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", errors.New("could not generate a unique booking number")
}

// notifyAvailability reads the showing back and fans the fresh
// availability snapshot out to subscribers. A read failure only costs
// a push, so it is logged and ignored.
func (co *Coordinator) notifyAvailability(ctx context.Context, showingID uint64) {
	showing, err := co.showings.GetByID(ctx, showingID)
	if err != nil {
		log.Printf("booking: availability read for showing %d failed: %v", showingID, err)
		return
	}
	room, err := co.rooms.GetByID(ctx, showing.RoomID)
	if err != nil {
		log.Printf("booking: room read for showing %d failed: %v", showingID, err)
		return
	}
	var available uint32
	if room.Capacity > showing.BookedCount {
		available = room.Capacity - showing.BookedCount
	}
	co.hub.Publish(notifier.Update{
		ShowingID:        showingID,
		AvailableTickets: available,
		TotalCapacity:    room.Capacity,
	})
}

// publishConfirmed loads the committed booking with its showing
// context and emits the broker event that drives the confirmation
// email. Returns the detail row for the handler's response; nil when
// the read fails.
func (co *Coordinator) publishConfirmed(ctx context.Context, b *model.Booking, seats []model.SeatRef) *repository.BookingDetail {
	detail, err := co.bookings.GetDetailForUser(ctx, b.ID, b.UserID)
	if err != nil {
		log.Printf("booking: detail read for %s failed: %v", b.BookingNumber, err)
		return nil
	}
	if co.publisher == nil {
		return detail
	}
	user, err := co.users.GetByID(ctx, b.UserID)
	if err != nil {
		log.Printf("booking: user read for %s failed: %v", b.BookingNumber, err)
		return detail
	}
	labels := make([]string, len(seats))
	for i, s := range seats {
		labels[i] = s.Label()
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:       b.ID,
		BookingNumber:   b.BookingNumber,
		UserID:          user.ID,
		UserEmail:       user.Email,
		UserName:        user.Name,
		ShowingID:       b.ShowingID,
		MovieTitle:      detail.MovieTitle,
		CinemaName:      detail.CinemaName,
		RoomName:        detail.RoomName,
		StartsAt:        detail.Showing.StartTime.UTC().Format(time.RFC3339),
		SeatLabels:      labels,
		TicketCount:     b.TicketCount,
		TotalPriceCents: b.TotalPriceCents,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := co.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Printf("booking: publish confirmed event for %s failed: %v", b.BookingNumber, err)
	}
	return detail
}

// outcome maps ledger errors to metric labels.
func outcome(err error) string {
	switch {
	case errors.Is(err, repository.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, repository.ErrShowingNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrShowingNotBookable):
		return "not_bookable"
	default:
		return "error"
	}
}
