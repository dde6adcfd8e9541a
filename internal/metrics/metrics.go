// Package metrics exposes the Prometheus counters tracked by the
// reservation engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hotel_reservation",
		Name:      "bookings_created_total",
		Help:      "Bookings committed successfully.",
	})
	bookingConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hotel_reservation",
		Name:      "booking_conflicts_total",
		Help:      "Booking requests rejected because the interval overlapped a live booking.",
	})
	txRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hotel_reservation",
		Name:      "booking_tx_retries_total",
		Help:      "Booking transactions retried after a serialization abort.",
	})
	documentsStored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hotel_reservation",
		Name:      "documents_stored_total",
		Help:      "Identity documents sealed and stored by the vault.",
	})
	integrityFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hotel_reservation",
		Name:      "document_integrity_failures_total",
		Help:      "Sealed payloads that failed authentication-tag verification.",
	})
)

// Register registers all counters. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingsCreated,
			bookingConflicts,
			txRetries,
			documentsStored,
			integrityFailures,
		)
	})
}

// IncBookingCreated counts one committed booking.
func IncBookingCreated() { bookingsCreated.Inc() }

// IncBookingConflict counts one rejected overlapping request.
func IncBookingConflict() { bookingConflicts.Inc() }

// IncTxRetry counts one retried booking transaction.
func IncTxRetry() { txRetries.Inc() }

// IncDocumentStored counts one sealed document.
func IncDocumentStored() { documentsStored.Inc() }

// IncIntegrityFailure counts one failed tag verification.
func IncIntegrityFailure() { integrityFailures.Inc() }
