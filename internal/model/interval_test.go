package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 15, 0, 0, 0, time.UTC)
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, Interval{CheckIn: day(1), CheckOut: day(3)}.Valid())
	assert.False(t, Interval{CheckIn: day(3), CheckOut: day(1)}.Valid(), "reversed endpoints")
	assert.False(t, Interval{CheckIn: day(1), CheckOut: day(1)}.Valid(), "empty interval")
	assert.False(t, Interval{CheckOut: day(1)}.Valid(), "zero check-in")
	assert.False(t, Interval{CheckIn: day(1)}.Valid(), "zero check-out")
}

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{CheckIn: day(10), CheckOut: day(15)}

	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"identical", Interval{CheckIn: day(10), CheckOut: day(15)}, true},
		{"contained", Interval{CheckIn: day(11), CheckOut: day(14)}, true},
		{"containing", Interval{CheckIn: day(9), CheckOut: day(16)}, true},
		{"overlaps start", Interval{CheckIn: day(8), CheckOut: day(11)}, true},
		{"overlaps end", Interval{CheckIn: day(14), CheckOut: day(17)}, true},
		{"single shared night", Interval{CheckIn: day(14), CheckOut: day(15)}, true},
		{"back-to-back after", Interval{CheckIn: day(15), CheckOut: day(18)}, false},
		{"back-to-back before", Interval{CheckIn: day(7), CheckOut: day(10)}, false},
		{"fully before", Interval{CheckIn: day(1), CheckOut: day(5)}, false},
		{"fully after", Interval{CheckIn: day(20), CheckOut: day(25)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			// overlap is symmetric
			assert.Equal(t, tc.want, tc.other.Overlaps(base))
		})
	}
}

func TestIntervalNights(t *testing.T) {
	in := time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(1), Interval{CheckIn: in, CheckOut: in.Add(24 * time.Hour)}.Nights())
	assert.Equal(t, int64(1), Interval{CheckIn: in, CheckOut: in.Add(2 * time.Hour)}.Nights(), "partial night rounds up")
	assert.Equal(t, int64(2), Interval{CheckIn: in, CheckOut: in.Add(25 * time.Hour)}.Nights())
	assert.Equal(t, int64(0), Interval{CheckIn: in, CheckOut: in}.Nights())
	assert.Equal(t, int64(0), Interval{CheckIn: in.Add(time.Hour), CheckOut: in}.Nights())
}
