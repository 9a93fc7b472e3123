package model

import "time"

// Room represents an auditorium within a cinema.  The seat capacity is
// the hard upper bound for ticket sales of any showing scheduled in the
// room; it is treated as immutable once showings exist so that the
// booked-count invariant never has to be re-validated against a shrunk
// room.
//
// Fields:
//  ID        – primary key identifier.
//  CinemaID  – cinema the room belongs to.
//  Name      – room name or number (e.g. "Zaal 3").
//  Capacity  – total number of seats, always > 0.
//  Has3D     – whether the room can screen 3D.
//  HasIMAX   – whether the room has an IMAX installation.
//  HasDolby  – whether the room has Dolby sound.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64    `json:"id"`
	CinemaID  uint64    `json:"cinema_id"`
	Name      string    `json:"name"`
	Capacity  uint32    `json:"capacity"`
	Has3D     bool      `json:"has_3d"`
	HasIMAX   bool      `json:"has_imax"`
	HasDolby  bool      `json:"has_dolby"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
