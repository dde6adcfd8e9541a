package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceStay(t *testing.T) {
	// 2025-02-01T14:00Z to 2025-02-05T12:00Z is 3 days 22 hours,
	// which rounds up to 4 nights.
	iv := Interval{
		CheckIn:  time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 2, 5, 12, 0, 0, 0, time.UTC),
	}
	q, err := PriceStay(100, iv)
	require.NoError(t, err)
	assert.Equal(t, int64(4), q.Nights)
	assert.Equal(t, int64(400), q.TotalCents)
}

func TestPriceStayExactNights(t *testing.T) {
	in := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	q, err := PriceStay(12550, Interval{CheckIn: in, CheckOut: in.Add(3 * 24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), q.Nights)
	assert.Equal(t, int64(37650), q.TotalCents)
}

func TestPriceStayRejectsBadInput(t *testing.T) {
	in := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	valid := Interval{CheckIn: in, CheckOut: in.Add(24 * time.Hour)}

	_, err := PriceStay(0, valid)
	assert.ErrorIs(t, err, ErrNonPositiveRate)

	_, err = PriceStay(-100, valid)
	assert.ErrorIs(t, err, ErrNonPositiveRate)

	_, err = PriceStay(100, Interval{CheckIn: in, CheckOut: in})
	assert.ErrorIs(t, err, ErrEmptyStay)

	_, err = PriceStay(100, Interval{CheckIn: in.Add(time.Hour), CheckOut: in})
	assert.ErrorIs(t, err, ErrEmptyStay)
}
