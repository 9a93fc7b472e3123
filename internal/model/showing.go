package model

import "time"

// Showing statuses.  Only scheduled showings accept bookings or
// participate in room conflict checks.
const (
	ShowingScheduled = "scheduled"
	ShowingCancelled = "cancelled"
	ShowingCompleted = "completed"
)

// Showing represents a scheduled screening of a movie in a room.
// BookedCount is the denormalized ticket ledger: it is mutated only by
// the booking coordinator inside the booking transaction and satisfies
// BookedCount <= room capacity at all times.
//
// Fields:
//  ID          – primary key identifier.
//  MovieID     – movie being screened.
//  RoomID      – room where the screening takes place.
//  StartTime   – when the screening begins (UTC).
//  EndTime     – when the screening ends, always after StartTime.
//  PriceCents  – ticket price in cents.
//  Status      – one of scheduled, cancelled, completed.
//  BookedCount – number of tickets sold so far.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Showing struct {
	ID          uint64    `json:"id"`
	MovieID     uint64    `json:"movie_id"`
	RoomID      uint64    `json:"room_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	PriceCents  uint32    `json:"price_cents"`
	Status      string    `json:"status"`
	BookedCount uint32    `json:"booked_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Overlaps reports whether the showing's half-open interval
// [StartTime, EndTime) intersects [start, end). Back-to-back showings,
// where one ends at the exact instant the next starts, do not overlap.
func (s *Showing) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}
