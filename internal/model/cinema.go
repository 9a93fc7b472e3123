package model

import "time"

// Cinema represents a physical theatre location.  A cinema contains
// multiple rooms.  This struct corresponds to a row in the `cinemas`
// table.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the cinema.
//  Address    – street address.
//  City       – city the cinema is located in.
//  PostalCode – postal code (nil when unknown).
//  Phone      – contact phone number (nil when unknown).
//  IsActive   – whether the cinema is open for business.
//  CreatedAt  – timestamp when the cinema was created.
//  UpdatedAt  – timestamp of last update.
type Cinema struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode *string   `json:"postal_code,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
