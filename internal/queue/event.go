// Package queue defines booking lifecycle messages exchanged over the
// broker, the publisher that emits them and the audit consumer that
// drains them.
package queue

// BookingCreatedEvent is published when a booking request commits.
// It carries enough for downstream consumers to notify, audit or feed
// analytics without querying the primary database.
type BookingCreatedEvent struct {
	EventID          string `json:"event_id"`
	BookingID        uint64 `json:"booking_id"`
	RoomID           uint64 `json:"room_id"`
	HotelID          uint64 `json:"hotel_id"`
	UserID           uint64 `json:"user_id"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	CreatedAt        string `json:"created_at"`
}

// BookingStatusChangedEvent is published after every successful status
// transition, including guest cancellations. Collaborators that react
// to transitions (payment capture on CONFIRMED, refunds on CANCELLED)
// subscribe to this stream instead of being called inline.
type BookingStatusChangedEvent struct {
	EventID    string `json:"event_id"`
	BookingID  uint64 `json:"booking_id"`
	RoomID     uint64 `json:"room_id"`
	HotelID    uint64 `json:"hotel_id"`
	UserID     uint64 `json:"user_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ChangedAt  string `json:"changed_at"`
}
