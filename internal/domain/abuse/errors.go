package abuse

import "errors"

var (
	// ErrAlreadyLocked is returned when locking an already-locked account.
	// This fails loudly: a double lock signals a caller bug.
	ErrAlreadyLocked = errors.New("account already locked")

	// ErrNotLocked is returned when unlocking with no active lockout
	ErrNotLocked = errors.New("account is not locked")

	// ErrInvalidEventType is returned for an unknown fraud event type
	ErrInvalidEventType = errors.New("invalid fraud event type")

	// ErrInvalidSeverity is returned for an unknown fraud event severity
	ErrInvalidSeverity = errors.New("invalid fraud event severity")
)
