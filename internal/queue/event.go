// Package queue defines message payloads exchanged over the message
// broker, the publisher that emits them and the background consumer
// that processes them.
package queue

// BookingConfirmedEvent is published after a booking transaction
// commits. It carries enough context for downstream consumers (the
// confirmation mailer, analytics) to act without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID       uint64   `json:"booking_id"`
	BookingNumber   string   `json:"booking_number"`
	UserID          uint64   `json:"user_id"`
	UserEmail       string   `json:"user_email"`
	UserName        string   `json:"user_name"`
	ShowingID       uint64   `json:"showing_id"`
	MovieTitle      string   `json:"movie_title"`
	CinemaName      string   `json:"cinema_name"`
	RoomName        string   `json:"room_name"`
	StartsAt        string   `json:"starts_at"`
	SeatLabels      []string `json:"seats,omitempty"`
	TicketCount     uint32   `json:"ticket_count"`
	TotalPriceCents uint32   `json:"total_price_cents"`
	ConfirmedAt     string   `json:"confirmed_at"`
}

// BookingQueueName is the durable queue booking confirmations are
// published to and the mail consumer reads from.
const BookingQueueName = "booking.confirmed"
