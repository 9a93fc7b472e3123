package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lynriescoop/cinema-booking/internal/booking"
	"github.com/lynriescoop/cinema-booking/internal/model"
	"github.com/lynriescoop/cinema-booking/internal/repository"
	"github.com/lynriescoop/cinema-booking/internal/ticket"
)

// CustomerBookingHandler exposes booking creation, listing,
// cancellation and the e-ticket download to authenticated customers.
type CustomerBookingHandler struct {
	Coordinator *booking.Coordinator
	Bookings    *repository.BookingRepo
	Seats       *repository.SeatReservationRepo
}

func NewCustomerBookingHandler(co *booking.Coordinator, bookings *repository.BookingRepo, seats *repository.SeatReservationRepo) *CustomerBookingHandler {
	if co == nil || bookings == nil || seats == nil {
		panic("nil dependency passed to NewCustomerBookingHandler")
	}
	return &CustomerBookingHandler{Coordinator: co, Bookings: bookings, Seats: seats}
}

type createBookingReq struct {
	ShowingID   uint64   `json:"showing_id"`
	TicketCount uint32   `json:"ticket_count"`
	Seats       []string `json:"seats"`
}

type bookingResp struct {
	ID              uint64   `json:"id"`
	BookingNumber   string   `json:"booking_number"`
	ShowingID       uint64   `json:"showing_id"`
	TicketCount     uint32   `json:"ticket_count"`
	TotalPriceCents uint32   `json:"total_price_cents"`
	Status          string   `json:"status"`
	Seats           []string `json:"seats,omitempty"`
	MovieTitle      string   `json:"movie_title,omitempty"`
	CinemaName      string   `json:"cinema_name,omitempty"`
	RoomName        string   `json:"room_name,omitempty"`
	StartTime       string   `json:"start_time,omitempty"`
}

// Create handles POST /v1/bookings.
func (h *CustomerBookingHandler) Create(c echo.Context) error {
	userID, err := authedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ShowingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showing_id required"})
	}

	conf, err := h.Coordinator.Create(c.Request().Context(), booking.Request{
		UserID:      userID,
		ShowingID:   req.ShowingID,
		TicketCount: req.TicketCount,
		Seats:       req.Seats,
	})
	if err != nil {
		return fail(c, err)
	}

	resp := bookingResp{
		ID:              conf.Booking.ID,
		BookingNumber:   conf.Booking.BookingNumber,
		ShowingID:       conf.Booking.ShowingID,
		TicketCount:     conf.Booking.TicketCount,
		TotalPriceCents: conf.Booking.TotalPriceCents,
		Status:          conf.Booking.Status,
		Seats:           seatLabels(conf.Seats),
	}
	if conf.Detail != nil {
		resp.MovieTitle = conf.Detail.MovieTitle
		resp.CinemaName = conf.Detail.CinemaName
		resp.RoomName = conf.Detail.RoomName
		resp.StartTime = conf.Detail.Showing.StartTime.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return c.JSON(http.StatusCreated, resp)
}

// List handles GET /v1/bookings and returns the caller's bookings.
func (h *CustomerBookingHandler) List(c echo.Context) error {
	userID, err := authedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]bookingResp, 0, len(details))
	for _, d := range details {
		out = append(out, detailToResp(d, nil))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Get handles GET /v1/bookings/:id.
func (h *CustomerBookingHandler) Get(c echo.Context) error {
	userID, err := authedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	d, err := h.Bookings.GetDetailForUser(ctx, id, userID)
	if err != nil {
		return fail(c, err)
	}
	seats, err := h.Seats.ListByBooking(ctx, d.Booking.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, detailToResp(d, seats))
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *CustomerBookingHandler) Cancel(c echo.Context) error {
	userID, err := authedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Coordinator.Cancel(c.Request().Context(), id, userID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Ticket handles GET /v1/bookings/:id/ticket and streams the PDF
// e-ticket for a confirmed booking.
func (h *CustomerBookingHandler) Ticket(c echo.Context) error {
	userID, err := authedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	d, err := h.Bookings.GetDetailForUser(ctx, id, userID)
	if err != nil {
		return fail(c, err)
	}
	if d.Booking.Status != model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not confirmed"})
	}
	seatRows, err := h.Seats.ListByBooking(ctx, d.Booking.ID)
	if err != nil {
		return fail(c, err)
	}
	labels := make([]string, len(seatRows))
	for i, sr := range seatRows {
		labels[i] = sr.Label()
	}
	pdf, filename, err := ticket.Build(ticket.Data{
		BookingNumber: d.Booking.BookingNumber,
		HolderName:    d.UserName,
		MovieTitle:    d.MovieTitle,
		CinemaName:    d.CinemaName,
		RoomName:      d.RoomName,
		StartsAt:      d.Showing.StartTime,
		Seats:         labels,
		TicketCount:   d.Booking.TicketCount,
		TotalCents:    d.Booking.TotalPriceCents,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket rendering failed"})
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func seatLabels(seats []model.SeatRef) []string {
	if len(seats) == 0 {
		return nil
	}
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.Label()
	}
	return out
}

func detailToResp(d *repository.BookingDetail, seats []*model.SeatReservation) bookingResp {
	resp := bookingResp{
		ID:              d.Booking.ID,
		BookingNumber:   d.Booking.BookingNumber,
		ShowingID:       d.Booking.ShowingID,
		TicketCount:     d.Booking.TicketCount,
		TotalPriceCents: d.Booking.TotalPriceCents,
		Status:          d.Booking.Status,
		MovieTitle:      d.MovieTitle,
		CinemaName:      d.CinemaName,
		RoomName:        d.RoomName,
		StartTime:       d.Showing.StartTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, sr := range seats {
		resp.Seats = append(resp.Seats, sr.Label())
	}
	return resp
}
