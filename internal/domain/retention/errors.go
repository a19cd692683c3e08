package retention

import "errors"

var (
	// ErrUnknownDataType is returned for a name outside the registry
	ErrUnknownDataType = errors.New("unknown data type")

	// ErrNotArchivable is returned when archiving a data type that has no
	// tenant column
	ErrNotArchivable = errors.New("data type is not archivable")

	// ErrPolicyNotFound is returned when no retention policy row exists
	ErrPolicyNotFound = errors.New("retention policy not found")

	// ErrDeletionNotFound is returned when a deletion request is not found
	ErrDeletionNotFound = errors.New("deletion request not found")

	// ErrDeletionNotPending is returned when starting a request that is
	// not pending
	ErrDeletionNotPending = errors.New("deletion request is not pending")

	// ErrDeletionNotInProgress is returned when completing a request that
	// was never started
	ErrDeletionNotInProgress = errors.New("deletion request is not in progress")

	// ErrDeletionAlreadyCompleted is returned when re-completing or
	// failing a finished request
	ErrDeletionAlreadyCompleted = errors.New("deletion request already completed")
)
