package model

import (
	"strconv"
	"time"
)

// Seat reservation statuses.  selected and reserved cover transient
// checkout states; booked is the terminal state for a confirmed
// booking.  A seat counts as taken while in any of the three active
// states.
const (
	SeatAvailable = "available"
	SeatSelected  = "selected"
	SeatReserved  = "reserved"
	SeatBooked    = "booked"
)

// SeatRef names a seat inside a room without tying it to any
// reservation row: a row letter plus a 1-based seat number.
type SeatRef struct {
	Row    string `json:"row"`
	Number uint32 `json:"number"`
}

// Label renders the seat in its display form, e.g. A1 or B12.
func (s SeatRef) Label() string {
	return s.Row + strconv.FormatUint(uint64(s.Number), 10)
}

// SeatReservation ties a booking to one concrete seat of a showing.
// Row and Number identify the seat within the room.  At most one
// active reservation may exist per (showing, row, number) tuple; rows
// are created and released with their owning booking.
//
// Fields:
//  ID         – primary key identifier.
//  BookingID  – booking this reservation belongs to.
//  ShowingID  – showing the seat is reserved for.
//  Row        – row letter(s), A–Z.
//  Number     – seat number within the row, >= 1.
//  PriceCents – price for this seat in cents.
//  Status     – one of available, selected, reserved, booked.
//  ExpiresAt  – reserved for a future hold-expiry flow (nil today).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type SeatReservation struct {
	ID         uint64     `json:"id"`
	BookingID  uint64     `json:"booking_id"`
	ShowingID  uint64     `json:"showing_id"`
	Row        string     `json:"row"`
	Number     uint32     `json:"number"`
	PriceCents uint32     `json:"price_cents"`
	Status     string     `json:"status"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Label renders the reserved seat in its display form.
func (s *SeatReservation) Label() string {
	return SeatRef{Row: s.Row, Number: s.Number}.Label()
}
