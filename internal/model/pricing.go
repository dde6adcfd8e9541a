package model

import "errors"

// Pricing errors returned by Quote.
var (
	ErrNonPositiveRate = errors.New("nightly rate must be positive")
	ErrEmptyStay       = errors.New("stay must cover at least one night")
)

// Quote is the priced result of a stay: the number of whole nights
// (rounded up) and the total amount in cents.
type Quote struct {
	Nights     int64
	TotalCents int64
}

// PriceStay computes the total for a stay as nights × nightly rate.
// Duration is rounded up to whole nights, matching the half-open
// interval model. It rejects a non-positive rate and an interval
// that does not cover at least one night.
func PriceStay(nightlyRateCents int64, iv Interval) (Quote, error) {
	if nightlyRateCents <= 0 {
		return Quote{}, ErrNonPositiveRate
	}
	nights := iv.Nights()
	if nights <= 0 {
		return Quote{}, ErrEmptyStay
	}
	return Quote{Nights: nights, TotalCents: nights * nightlyRateCents}, nil
}
