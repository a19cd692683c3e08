package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant is not found
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned when an operation requires an active tenant
	ErrTenantInactive = errors.New("tenant is inactive")
)
