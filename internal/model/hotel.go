package model

import "time"

// Hotel represents a property managed by a single owner account.
// Rooms always belong to exactly one hotel, and booking status
// transitions are authorized against the hotel's owner.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user who owns and manages the hotel.
//  Code      – short public code, unique across hotels.
//  Name      – display name of the hotel.
//  City      – city the hotel is located in.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Hotel struct {
	ID        uint64    `json:"id"`        // hotels.id
	OwnerID   uint64    `json:"ownerId"`   // hotels.owner_id
	Code      string    `json:"code"`      // hotels.code
	Name      string    `json:"name"`      // hotels.name
	City      string    `json:"city"`      // hotels.city
	CreatedAt time.Time `json:"createdAt"` // hotels.created_at
	UpdatedAt time.Time `json:"updatedAt"` // hotels.updated_at
}
