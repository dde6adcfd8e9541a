package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// memStore is an in-memory ReservationStore. A single mutex gives the
// same guarantee the MySQL implementation gets from row locks: decide
// callbacks never interleave, and each one sees all previously
// committed bookings.
type memStore struct {
	mu       sync.Mutex
	rooms    map[uint64]*model.Room
	bookings map[uint64]*model.Booking
	nextID   uint64

	// failNext returns repository.ErrSerialization from the next n
	// CreateBookingAtomic calls, simulating deadlock aborts.
	failNext int
}

func newMemStore(rooms ...*model.Room) *memStore {
	s := &memStore{
		rooms:    make(map[uint64]*model.Room),
		bookings: make(map[uint64]*model.Booking),
	}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memStore) CreateBookingAtomic(ctx context.Context, roomID uint64, decide func(room *model.Room, live []model.Booking) (*model.Booking, error)) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext > 0 {
		s.failNext--
		return nil, repository.ErrSerialization
	}

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var live []model.Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.Status.Live() {
			live = append(live, *b)
		}
	}

	b, err := decide(room, live)
	if err != nil {
		return nil, err
	}
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	stored := *b
	s.bookings[b.ID] = &stored
	return b, nil
}

func (s *memStore) UpdateStatusAtomic(ctx context.Context, bookingID uint64, decide func(b *model.Booking) (model.BookingStatus, error)) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next, err := decide(b)
	if err != nil {
		return nil, err
	}
	b.Status = next
	b.UpdatedAt = time.Now().UTC()
	out := *b
	return &out, nil
}

func (s *memStore) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (s *memStore) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

// memOwners maps hotel IDs to owner user IDs.
type memOwners map[uint64]uint64

func (m memOwners) OwnerOf(ctx context.Context, hotelID uint64) (uint64, error) {
	owner, ok := m[hotelID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return owner, nil
}

// eventRecorder counts published events.
type eventRecorder struct {
	mu      sync.Mutex
	created int
	changed int
}

func (r *eventRecorder) BookingCreated(ctx context.Context, b *model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *eventRecorder) BookingStatusChanged(ctx context.Context, b *model.Booking, from model.BookingStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed++
}

const (
	testHotelID = uint64(7)
	testOwnerID = uint64(70)
	testGuestID = uint64(100)
)

func testRoom() *model.Room {
	return &model.Room{ID: 1, HotelID: testHotelID, NightlyRateCents: 10000, Capacity: 2}
}

func newTestService(store *memStore) (*ReservationService, *eventRecorder) {
	events := &eventRecorder{}
	svc := NewReservationService(store, memOwners{testHotelID: testOwnerID}, events, zerolog.Nop())
	return svc, events
}

func stay(d1, d2 int) (time.Time, time.Time) {
	return time.Date(2025, 9, d1, 15, 0, 0, 0, time.UTC),
		time.Date(2025, 9, d2, 11, 0, 0, 0, time.UTC)
}

func bookingReq(d1, d2 int) BookingRequest {
	in, out := stay(d1, d2)
	return BookingRequest{
		RoomID:    1,
		UserID:    testGuestID,
		CheckIn:   in,
		CheckOut:  out,
		Occupants: []model.Occupant{{FullName: "Dana Traveler", Age: 34}},
	}
}

func TestRequestBookingSuccess(t *testing.T) {
	store := newMemStore(testRoom())
	svc, events := newTestService(store)

	b, err := svc.RequestBooking(context.Background(), bookingReq(1, 4))
	require.NoError(t, err)

	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	assert.Equal(t, testHotelID, b.HotelID)
	assert.Equal(t, testGuestID, b.UserID)
	// Sep 1 15:00 to Sep 4 11:00 rounds up to 3 nights at 10000.
	assert.Equal(t, int64(30000), b.TotalAmountCents)
	assert.NotZero(t, b.ID)
	assert.Equal(t, 1, events.created)
}

func TestRequestBookingOverlapConflict(t *testing.T) {
	store := newMemStore(testRoom())
	svc, events := newTestService(store)
	ctx := context.Background()

	_, err := svc.RequestBooking(ctx, bookingReq(10, 15))
	require.NoError(t, err)

	overlapping := []BookingRequest{
		bookingReq(10, 15), // identical
		bookingReq(12, 13), // contained
		bookingReq(8, 11),  // crosses start
		bookingReq(14, 20), // crosses end
	}
	for _, req := range overlapping {
		_, err := svc.RequestBooking(ctx, req)
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, events.created, "only the first booking commits")
}

func TestRequestBookingBackToBack(t *testing.T) {
	store := newMemStore(testRoom())
	svc, _ := newTestService(store)
	ctx := context.Background()

	in, out := stay(10, 15)
	_, err := svc.RequestBooking(ctx, BookingRequest{
		RoomID: 1, UserID: testGuestID, CheckIn: in, CheckOut: out,
		Occupants: []model.Occupant{{FullName: "A"}},
	})
	require.NoError(t, err)

	// Next stay checks in at the exact instant the first checks out.
	_, err = svc.RequestBooking(ctx, BookingRequest{
		RoomID: 1, UserID: testGuestID + 1, CheckIn: out, CheckOut: out.Add(48 * time.Hour),
		Occupants: []model.Occupant{{FullName: "B"}},
	})
	assert.NoError(t, err, "half-open intervals make back-to-back stays legal")
}

func TestRequestBookingValidation(t *testing.T) {
	store := newMemStore(testRoom())
	svc, _ := newTestService(store)
	ctx := context.Background()

	in, out := stay(5, 3) // reversed
	_, err := svc.RequestBooking(ctx, BookingRequest{
		RoomID: 1, UserID: testGuestID, CheckIn: in, CheckOut: out,
		Occupants: []model.Occupant{{FullName: "A"}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	req := bookingReq(1, 3)
	req.Occupants = nil
	_, err = svc.RequestBooking(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = bookingReq(1, 3)
	req.RoomID = 0
	_, err = svc.RequestBooking(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequestBookingZeroRateRoom(t *testing.T) {
	room := testRoom()
	room.NightlyRateCents = 0
	store := newMemStore(room)
	svc, _ := newTestService(store)

	_, err := svc.RequestBooking(context.Background(), bookingReq(1, 3))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelledBookingFreesInterval(t *testing.T) {
	store := newMemStore(testRoom())
	svc, _ := newTestService(store)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, bookingReq(10, 15))
	require.NoError(t, err)

	guest := model.Principal{UserID: testGuestID, Role: model.RoleGuest}
	_, err = svc.CancelOwnBooking(ctx, b.ID, guest)
	require.NoError(t, err)

	// The cancelled booking no longer claims the range.
	_, err = svc.RequestBooking(ctx, bookingReq(10, 15))
	assert.NoError(t, err)
}

func TestRequestBookingRetriesSerializationAborts(t *testing.T) {
	store := newMemStore(testRoom())
	store.failNext = 2
	svc, events := newTestService(store)

	b, err := svc.RequestBooking(context.Background(), bookingReq(1, 3))
	require.NoError(t, err, "aborted transactions retry transparently")
	assert.NotZero(t, b.ID)
	assert.Equal(t, 1, events.created)
}

func TestRequestBookingSerializationExhausted(t *testing.T) {
	store := newMemStore(testRoom())
	store.failNext = 100 // more than the retry budget
	svc, events := newTestService(store)

	_, err := svc.RequestBooking(context.Background(), bookingReq(1, 3))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 0, events.created)
}

func TestTransitionAuthorization(t *testing.T) {
	store := newMemStore(testRoom())
	svc, events := newTestService(store)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, bookingReq(1, 3))
	require.NoError(t, err)

	owner := model.Principal{UserID: testOwnerID, Role: model.RoleOwner}
	admin := model.Principal{UserID: 999, Role: model.RoleAdmin}
	guest := model.Principal{UserID: testGuestID, Role: model.RoleGuest}
	otherOwner := model.Principal{UserID: testOwnerID + 1, Role: model.RoleOwner}

	// The booking's guest may not confirm their own booking.
	_, err = svc.Transition(ctx, b.ID, model.BookingConfirmed, guest)
	assert.ErrorIs(t, err, ErrForbidden)

	// Neither may an unrelated owner.
	_, err = svc.Transition(ctx, b.ID, model.BookingConfirmed, otherOwner)
	assert.ErrorIs(t, err, ErrForbidden)

	// The hotel owner may.
	updated, err := svc.Transition(ctx, b.ID, model.BookingConfirmed, owner)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, updated.Status)

	// And so may an admin.
	updated, err = svc.Transition(ctx, b.ID, model.BookingCheckedIn, admin)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCheckedIn, updated.Status)

	assert.Equal(t, 2, events.changed)
}

func TestTransitionStateMachine(t *testing.T) {
	store := newMemStore(testRoom())
	svc, _ := newTestService(store)
	ctx := context.Background()
	owner := model.Principal{UserID: testOwnerID, Role: model.RoleOwner}

	b, err := svc.RequestBooking(ctx, bookingReq(1, 3))
	require.NoError(t, err)

	// PENDING cannot jump straight to CHECKED_IN.
	_, err = svc.Transition(ctx, b.ID, model.BookingCheckedIn, owner)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Transition(ctx, b.ID, model.BookingConfirmed, owner)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, b.ID, model.BookingCheckedIn, owner)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, b.ID, model.BookingCheckedOut, owner)
	require.NoError(t, err)

	// CHECKED_OUT is terminal.
	_, err = svc.Transition(ctx, b.ID, model.BookingCancelled, owner)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Unknown status is rejected before touching the store.
	_, err = svc.Transition(ctx, b.ID, "SHIPPED", owner)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelOwnBooking(t *testing.T) {
	store := newMemStore(testRoom())
	svc, _ := newTestService(store)
	ctx := context.Background()
	owner := model.Principal{UserID: testOwnerID, Role: model.RoleOwner}
	guest := model.Principal{UserID: testGuestID, Role: model.RoleGuest}
	stranger := model.Principal{UserID: testGuestID + 1, Role: model.RoleGuest}

	b, err := svc.RequestBooking(ctx, bookingReq(1, 3))
	require.NoError(t, err)

	_, err = svc.CancelOwnBooking(ctx, b.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.CancelOwnBooking(ctx, b.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, updated.Status)

	// A checked-in stay cannot be cancelled by the guest.
	b2, err := svc.RequestBooking(ctx, bookingReq(10, 12))
	require.NoError(t, err)
	_, err = svc.Transition(ctx, b2.ID, model.BookingConfirmed, owner)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, b2.ID, model.BookingCheckedIn, owner)
	require.NoError(t, err)
	_, err = svc.CancelOwnBooking(ctx, b2.ID, guest)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetBookingAuthorization(t *testing.T) {
	store := newMemStore(testRoom())
	svc, _ := newTestService(store)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, bookingReq(1, 3))
	require.NoError(t, err)

	cases := []struct {
		name  string
		actor model.Principal
		ok    bool
	}{
		{"guest sees own", model.Principal{UserID: testGuestID, Role: model.RoleGuest}, true},
		{"hotel owner sees it", model.Principal{UserID: testOwnerID, Role: model.RoleOwner}, true},
		{"admin sees all", model.Principal{UserID: 999, Role: model.RoleAdmin}, true},
		{"stranger denied", model.Principal{UserID: testGuestID + 1, Role: model.RoleGuest}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.GetBooking(ctx, b.ID, tc.actor)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, b.ID, got.ID)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestConcurrentBookingsSingleWinner(t *testing.T) {
	store := newMemStore(testRoom())
	svc, events := newTestService(store)

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := bookingReq(20, 25)
			req.UserID = uint64(1000 + i)
			_, errs[i] = svc.RequestBooking(context.Background(), req)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent request may claim the interval")
	assert.Equal(t, 1, events.created)

	// Invariant: live bookings of the room never overlap.
	var claimed []model.Booking
	store.mu.Lock()
	for _, b := range store.bookings {
		if b.Status.Live() {
			claimed = append(claimed, *b)
		}
	}
	store.mu.Unlock()
	for i := range claimed {
		for j := i + 1; j < len(claimed); j++ {
			assert.False(t, claimed[i].Interval().Overlaps(claimed[j].Interval()),
				"bookings %d and %d overlap", claimed[i].ID, claimed[j].ID)
		}
	}
}
