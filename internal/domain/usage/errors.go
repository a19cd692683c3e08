package usage

import "errors"

var (
	// ErrLimitExceeded is returned when check-and-increment hits the ceiling.
	// This is a first-class outcome of the ledger, not a generic failure.
	ErrLimitExceeded = errors.New("usage limit exceeded")

	// ErrCounterNotFound is returned when a counter row is not found
	ErrCounterNotFound = errors.New("usage counter not found")

	// ErrInvalidTier is returned when an unknown plan tier is used
	ErrInvalidTier = errors.New("invalid plan tier")
)
