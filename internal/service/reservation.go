package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/iliyamo/hotel-reservation/internal/metrics"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// ReservationStore is the transactional persistence the reservation
// manager runs on. CreateBookingAtomic and UpdateStatusAtomic must
// execute their decide callback and the following write as one atomic
// unit under per-room (respectively per-booking) mutual exclusion;
// the MySQL implementation lives in repository.BookingRepo.
type ReservationStore interface {
	CreateBookingAtomic(ctx context.Context, roomID uint64, decide func(room *model.Room, live []model.Booking) (*model.Booking, error)) (*model.Booking, error)
	UpdateStatusAtomic(ctx context.Context, bookingID uint64, decide func(b *model.Booking) (model.BookingStatus, error)) (*model.Booking, error)
	BookingByID(ctx context.Context, id uint64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// HotelOwners resolves the owning user of a hotel for authorization.
type HotelOwners interface {
	OwnerOf(ctx context.Context, hotelID uint64) (uint64, error)
}

// EventPublisher receives booking lifecycle notifications after a
// successful commit. Publishing happens strictly outside the
// transaction boundary and failures never fail the request.
type EventPublisher interface {
	BookingCreated(ctx context.Context, b *model.Booking)
	BookingStatusChanged(ctx context.Context, b *model.Booking, from model.BookingStatus)
}

// Bounded retry settings for serialization failures. The backoff is
// exponential starting at txRetryBase.
const (
	txRetryAttempts = 3
	txRetryBase     = 25 * time.Millisecond
)

// ReservationService enforces the no-double-book invariant: for any
// room, the intervals of PENDING, CONFIRMED and CHECKED_IN bookings
// never overlap, under arbitrary interleaving of concurrent requests.
type ReservationService struct {
	store  ReservationStore
	hotels HotelOwners
	events EventPublisher
	log    zerolog.Logger
}

// NewReservationService wires the reservation manager. events may be
// nil when no broker is configured.
func NewReservationService(store ReservationStore, hotels HotelOwners, events EventPublisher, log zerolog.Logger) *ReservationService {
	if store == nil || hotels == nil {
		panic("nil store passed to NewReservationService")
	}
	return &ReservationService{
		store:  store,
		hotels: hotels,
		events: events,
		log:    log.With().Str("component", "reservation").Logger(),
	}
}

// BookingRequest carries one guest's request to reserve a room for a
// half-open date range.
type BookingRequest struct {
	RoomID    uint64
	UserID    uint64
	CheckIn   time.Time
	CheckOut  time.Time
	Occupants []model.Occupant
}

// RequestBooking decides availability and commits the booking as one
// atomic unit. Within the transaction it reads the room's live
// bookings, applies the overlap rule, prices the stay and inserts a
// PENDING row; a serialization abort retries the whole transaction up
// to txRetryAttempts times before surfacing ErrConflict.
//
// On success exactly one new booking exists whose interval overlaps no
// live booking of the same room, including ones committed concurrently.
func (s *ReservationService) RequestBooking(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	iv := model.Interval{CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	if !iv.Valid() {
		return nil, fmt.Errorf("%w: checkIn must be strictly before checkOut", ErrValidation)
	}
	if len(req.Occupants) == 0 {
		return nil, fmt.Errorf("%w: occupants must not be empty", ErrValidation)
	}
	if req.UserID == 0 || req.RoomID == 0 {
		return nil, fmt.Errorf("%w: missing room or user reference", ErrValidation)
	}

	var booking *model.Booking
	backoff := retry.WithMaxRetries(txRetryAttempts, retry.NewExponential(txRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := s.store.CreateBookingAtomic(ctx, req.RoomID, func(room *model.Room, live []model.Booking) (*model.Booking, error) {
			for i := range live {
				if live[i].Status.Live() && iv.Overlaps(live[i].Interval()) {
					return nil, fmt.Errorf("%w: room %d is booked between %s and %s",
						ErrConflict, room.ID,
						live[i].CheckIn.Format(time.RFC3339), live[i].CheckOut.Format(time.RFC3339))
				}
			}
			quote, err := model.PriceStay(room.NightlyRateCents, iv)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrValidation, err)
			}
			return &model.Booking{
				RoomID:           room.ID,
				HotelID:          room.HotelID,
				UserID:           req.UserID,
				CheckIn:          req.CheckIn.UTC(),
				CheckOut:         req.CheckOut.UTC(),
				Status:           model.BookingPending,
				PaymentStatus:    model.PaymentPending,
				TotalAmountCents: quote.TotalCents,
				Occupants:        req.Occupants,
			}, nil
		})
		if err != nil {
			if errors.Is(err, repository.ErrSerialization) {
				metrics.IncTxRetry()
				s.log.Warn().Uint64("room_id", req.RoomID).Msg("booking transaction aborted, retrying")
				return retry.RetryableError(err)
			}
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrSerialization) {
			// Retries exhausted against concurrent writers for the same
			// room: from the caller's point of view this is a conflict.
			metrics.IncBookingConflict()
			return nil, fmt.Errorf("%w: concurrent bookings for room %d", ErrConflict, req.RoomID)
		}
		if errors.Is(err, ErrConflict) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.log.Info().
		Uint64("booking_id", booking.ID).
		Uint64("room_id", booking.RoomID).
		Int64("total_cents", booking.TotalAmountCents).
		Msg("booking created")
	if s.events != nil {
		s.events.BookingCreated(ctx, booking)
	}
	return booking, nil
}

// Transition moves a booking to a new status on behalf of the hotel
// owner (or a platform admin). It fails with ErrForbidden for any
// other actor and with ErrInvalidTransition when the state machine
// does not reach newStatus from the current one. No side effects such
// as payment capture happen here; collaborators react to the
// published status-change event instead.
func (s *ReservationService) Transition(ctx context.Context, bookingID uint64, newStatus model.BookingStatus, actor model.Principal) (*model.Booking, error) {
	if !model.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}
	var from model.BookingStatus
	updated, err := s.store.UpdateStatusAtomic(ctx, bookingID, func(b *model.Booking) (model.BookingStatus, error) {
		if !actor.IsAdmin() {
			owner, err := s.hotels.OwnerOf(ctx, b.HotelID)
			if err != nil {
				return "", err
			}
			if actor.UserID != owner {
				return "", fmt.Errorf("%w: only the hotel owner may change booking status", ErrForbidden)
			}
		}
		if !model.CanTransition(b.Status, newStatus) {
			return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, newStatus)
		}
		from = b.Status
		return newStatus, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Uint64("booking_id", updated.ID).
		Str("from", string(from)).
		Str("to", string(newStatus)).
		Msg("booking status changed")
	if s.events != nil {
		s.events.BookingStatusChanged(ctx, updated, from)
	}
	return updated, nil
}

// CancelOwnBooking lets a guest cancel their own booking. It runs the
// same state machine as Transition (so cancelling a CHECKED_IN or
// terminal booking fails) but authorizes against the booking's guest
// instead of the hotel owner.
func (s *ReservationService) CancelOwnBooking(ctx context.Context, bookingID uint64, actor model.Principal) (*model.Booking, error) {
	var from model.BookingStatus
	updated, err := s.store.UpdateStatusAtomic(ctx, bookingID, func(b *model.Booking) (model.BookingStatus, error) {
		if b.UserID != actor.UserID && !actor.IsAdmin() {
			return "", fmt.Errorf("%w: booking belongs to another guest", ErrForbidden)
		}
		if !model.CanTransition(b.Status, model.BookingCancelled) {
			return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, model.BookingCancelled)
		}
		from = b.Status
		return model.BookingCancelled, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint64("booking_id", updated.ID).Msg("booking cancelled by guest")
	if s.events != nil {
		s.events.BookingStatusChanged(ctx, updated, from)
	}
	return updated, nil
}

// GetBooking returns one booking, restricted to its guest, the hotel
// owner or an admin.
func (s *ReservationService) GetBooking(ctx context.Context, bookingID uint64, actor model.Principal) (*model.Booking, error) {
	b, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID == actor.UserID || actor.IsAdmin() {
		return b, nil
	}
	owner, err := s.hotels.OwnerOf(ctx, b.HotelID)
	if err != nil {
		return nil, err
	}
	if owner != actor.UserID {
		return nil, fmt.Errorf("%w: not your booking", ErrForbidden)
	}
	return b, nil
}

// ListBookingsForUser returns all bookings made by one user.
func (s *ReservationService) ListBookingsForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.store.ListByUser(ctx, userID)
}
