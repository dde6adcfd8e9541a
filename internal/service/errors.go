// Package service holds the reservation manager and the document
// vault: the two components that own the booking consistency and
// document confidentiality guarantees. Stores are injected through
// small interfaces so tests can run against in-memory doubles.
package service

import "errors"

// Typed failures surfaced by the service layer. Handlers translate
// these into HTTP status codes with errors.Is; nothing is ever
// swallowed silently.
var (
	// ErrValidation marks malformed caller input. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrConflict means the requested interval overlaps a live booking,
	// including the case where bounded transaction retries were
	// exhausted by concurrent writers. The caller must pick new dates.
	ErrConflict = errors.New("booking conflict")

	// ErrForbidden marks an actor lacking rights for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition marks a booking status change the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrIntegrity means a sealed document failed tag verification:
	// tampering or corruption. Corrupted plaintext is never returned.
	ErrIntegrity = errors.New("document integrity failure")

	// ErrReconciliation marks a partial vault delete (blob gone, record
	// left or the reverse). Logged for operator remediation.
	ErrReconciliation = errors.New("vault delete needs reconciliation")

	// ErrTransientStore marks a database failure that survived the
	// bounded retries and may succeed on a later attempt.
	ErrTransientStore = errors.New("transient store failure")

	// ErrTransientObjectStore is the object-store counterpart of
	// ErrTransientStore.
	ErrTransientObjectStore = errors.New("transient object store failure")
)
