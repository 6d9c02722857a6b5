package domain

import "errors"

var (
	// ErrNotFound is returned when a counter has never been incremented.
	ErrNotFound = errors.New("counter not found")

	// ErrInvalidInput covers a missing counter id or a cooldown TTL
	// outside the accepted range. Nothing is mutated.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageUnavailable means the durable store could not complete an
	// atomic operation. The call fails without internal retry; a blind
	// retry could double-count if the first attempt actually landed.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
