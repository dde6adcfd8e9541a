package model

import "time"

// Interval is a half-open reservation interval [CheckIn, CheckOut).
// The half-open convention makes back-to-back stays legal: a booking
// checking out at instant T never conflicts with one checking in at T.
type Interval struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Valid reports whether the interval is well formed: both endpoints
// set and check-in strictly before check-out.
func (iv Interval) Valid() bool {
	return !iv.CheckIn.IsZero() && !iv.CheckOut.IsZero() && iv.CheckIn.Before(iv.CheckOut)
}

// Overlaps reports whether two half-open intervals intersect in a
// non-empty range: a.CheckIn < b.CheckOut && b.CheckIn < a.CheckOut.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(iv.CheckOut)
}

// Nights returns the stay length rounded up to whole nights. A stay
// shorter than 24 hours still counts as one night. Non-positive
// durations return 0.
func (iv Interval) Nights() int64 {
	d := iv.CheckOut.Sub(iv.CheckIn)
	if d <= 0 {
		return 0
	}
	nights := int64(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}
