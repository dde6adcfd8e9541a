package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to BookingStatus }{
		{BookingPending, BookingConfirmed},
		{BookingPending, BookingRejected},
		{BookingPending, BookingCancelled},
		{BookingConfirmed, BookingCheckedIn},
		{BookingConfirmed, BookingCancelled},
		{BookingCheckedIn, BookingCheckedOut},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to BookingStatus }{
		{BookingPending, BookingCheckedIn},
		{BookingPending, BookingCheckedOut},
		{BookingConfirmed, BookingRejected},
		{BookingConfirmed, BookingCheckedOut},
		{BookingCheckedIn, BookingCancelled},
		{BookingCheckedIn, BookingConfirmed},
		{BookingCheckedOut, BookingCancelled},
		{BookingCancelled, BookingPending},
		{BookingRejected, BookingConfirmed},
		{BookingPending, BookingPending}, // no self transitions
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []BookingStatus{BookingCheckedOut, BookingCancelled, BookingRejected} {
		assert.True(t, IsTerminal(s), string(s))
	}
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingCheckedIn} {
		assert.False(t, IsTerminal(s), string(s))
	}
}

func TestLiveStatuses(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingCheckedIn} {
		assert.True(t, s.Live(), string(s))
	}
	for _, s := range []BookingStatus{BookingCheckedOut, BookingCancelled, BookingRejected} {
		assert.False(t, s.Live(), string(s))
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(BookingPending))
	assert.True(t, ValidStatus(BookingCheckedOut))
	assert.False(t, ValidStatus("SHIPPED"))
	assert.False(t, ValidStatus(""))
}
