package entitlement

import "errors"

var (
	// ErrEntitlementNotFound is returned when an entitlement row is not found.
	// Read paths treat this as "not entitled", not as a failure.
	ErrEntitlementNotFound = errors.New("entitlement not found")

	// ErrInvalidFeature is returned when a feature outside the vocabulary is used
	ErrInvalidFeature = errors.New("invalid feature")

	// ErrInvalidSourceType is returned when an invalid source type is provided
	ErrInvalidSourceType = errors.New("invalid source type")
)
