package model

import "time"

// RoomStatus describes the operational state of a room as set by the
// hotel owner. It is informational only: availability for a date range
// is always decided by the live booking set, never by this flag.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomReserved    RoomStatus = "RESERVED"
)

// Room is a bookable unit inside a hotel. The nightly rate is stored
// in cents to avoid floating point drift in price computation.
//
// Fields:
//  ID               – primary key identifier.
//  HotelID          – hotel the room belongs to.
//  Code             – short public code, unique across rooms.
//  RoomType         – free-form type label (e.g. "double", "suite").
//  NightlyRateCents – price per night in cents, always positive.
//  Capacity         – maximum number of occupants.
//  Status           – informational status flag (see RoomStatus).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Room struct {
	ID               uint64     `json:"id"`               // rooms.id
	HotelID          uint64     `json:"hotelId"`          // rooms.hotel_id
	Code             string     `json:"code"`             // rooms.code
	RoomType         string     `json:"roomType"`         // rooms.room_type
	NightlyRateCents int64      `json:"nightlyRateCents"` // rooms.nightly_rate_cents
	Capacity         int        `json:"capacity"`         // rooms.capacity
	Status           RoomStatus `json:"status"`           // rooms.status
	CreatedAt        time.Time  `json:"createdAt"`        // rooms.created_at
	UpdatedAt        time.Time  `json:"updatedAt"`        // rooms.updated_at
}
