package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking. New
// bookings always start in PENDING. CHECKED_OUT, CANCELLED and
// REJECTED are terminal: no further transition is permitted.
type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingRejected   BookingStatus = "REJECTED"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
)

// PaymentStatus tracks the settlement state of a booking. Payment
// capture itself happens outside this service; only the flag is kept.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// transitions is the full reachability table of the booking state
// machine. A status missing from the map is terminal.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRejected, BookingCancelled},
	BookingConfirmed: {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn: {BookingCheckedOut},
}

// ValidStatus reports whether s is one of the known booking statuses.
func ValidStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingRejected,
		BookingCancelled, BookingCheckedIn, BookingCheckedOut:
		return true
	}
	return false
}

// CanTransition reports whether the state machine allows moving from
// one status to another. Self transitions are not allowed.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the given status.
func IsTerminal(s BookingStatus) bool {
	return len(transitions[s]) == 0
}

// Live reports whether a booking in this status still claims its date
// range. Only live bookings participate in the overlap check; terminal
// bookings free the interval but remain stored for audit.
func (s BookingStatus) Live() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn:
		return true
	}
	return false
}

// Occupant is a free-form record of one guest staying under a booking.
type Occupant struct {
	FullName string `json:"fullName" validate:"required"`
	Age      int    `json:"age,omitempty" validate:"gte=0,lte=130"`
}

// Booking records a guest's reservation of a room for a half-open
// date range [CheckIn, CheckOut). Bookings are never deleted; they are
// retired through status transitions and retained for audit.
//
// Fields:
//  ID               – primary key identifier.
//  RoomID           – room being reserved.
//  HotelID          – hotel the room belongs to (denormalized for authz).
//  UserID           – guest who requested the booking.
//  CheckIn          – start of the stay, inclusive, UTC.
//  CheckOut         – end of the stay, exclusive, UTC.
//  Status           – lifecycle state (see BookingStatus).
//  PaymentStatus    – settlement flag (see PaymentStatus).
//  TotalAmountCents – nights × nightly rate, fixed at creation.
//  Occupants        – guests staying under this booking.
//  DocumentMeta     – optional free-form document metadata.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Booking struct {
	ID               uint64            `json:"id"`                     // bookings.id
	RoomID           uint64            `json:"roomId"`                 // bookings.room_id
	HotelID          uint64            `json:"hotelId"`                // bookings.hotel_id
	UserID           uint64            `json:"userId"`                 // bookings.user_id
	CheckIn          time.Time         `json:"checkIn"`                // bookings.check_in
	CheckOut         time.Time         `json:"checkOut"`               // bookings.check_out
	Status           BookingStatus     `json:"status"`                 // bookings.status
	PaymentStatus    PaymentStatus     `json:"paymentStatus"`          // bookings.payment_status
	TotalAmountCents int64             `json:"totalAmount"`            // bookings.total_amount_cents
	Occupants        []Occupant        `json:"occupants"`              // bookings.occupants (JSON column)
	DocumentMeta     map[string]string `json:"documentMeta,omitempty"` // bookings.document_meta (JSON column)
	CreatedAt        time.Time         `json:"createdAt"`              // bookings.created_at
	UpdatedAt        time.Time         `json:"updatedAt"`              // bookings.updated_at
}

// Interval returns the booking's half-open reservation interval.
func (b *Booking) Interval() Interval {
	return Interval{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}
