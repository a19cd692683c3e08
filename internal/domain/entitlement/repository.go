package entitlement

import "context"

// Repository defines the interface for entitlement persistence operations
type Repository interface {
	// Create creates a new entitlement grant
	Create(ctx context.Context, e *Entitlement) error

	// Update persists changes to an existing grant (revocation, regrant)
	Update(ctx context.Context, e *Entitlement) error

	// GetByUserAndFeature retrieves the grant row for a (user, tenant, feature)
	// triple. Returns ErrEntitlementNotFound when no row exists.
	GetByUserAndFeature(ctx context.Context, userID, tenantKey string, feature Feature) (*Entitlement, error)

	// GetByUser retrieves all grant rows for a user within a tenant,
	// revoked rows included
	GetByUser(ctx context.Context, userID, tenantKey string) ([]*Entitlement, error)

	// HasActive reports whether an unrevoked grant exists for the triple
	HasActive(ctx context.Context, userID, tenantKey string, feature Feature) (bool, error)

	// RevokeAllByUser soft-revokes every active grant for a user within a
	// tenant and returns the number of rows newly revoked. Calling it when
	// everything is already revoked is a no-op returning zero.
	RevokeAllByUser(ctx context.Context, userID, tenantKey string) (int64, error)
}
