package model

import "time"

// Booking statuses.  A booking is created pending and confirmed within
// the same transaction today; pending exists for future payment flows.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking records a confirmed ticket purchase for a showing.  A booking
// is immutable once confirmed except for the status transition to
// cancelled.  BookingNumber is the human-shareable reference code
// printed on tickets and confirmation emails.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the booking.
//  ShowingID       – showing the tickets are for.
//  BookingNumber   – unique 8 character reference code.
//  TicketCount     – number of tickets purchased.
//  TotalPriceCents – total price in cents for all tickets.
//  Status          – one of pending, confirmed, cancelled, completed.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	ShowingID       uint64    `json:"showing_id"`
	BookingNumber   string    `json:"booking_number"`
	TicketCount     uint32    `json:"ticket_count"`
	TotalPriceCents uint32    `json:"total_price_cents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
