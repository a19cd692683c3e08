package tenant

import "context"

// Repository defines the interface for tenant persistence operations
type Repository interface {
	// Create creates a new tenant
	Create(ctx context.Context, t *Tenant) error

	// Update persists changes to an existing tenant
	Update(ctx context.Context, t *Tenant) error

	// GetByKey retrieves a tenant by its natural key
	GetByKey(ctx context.Context, key string) (*Tenant, error)

	// QuotaOverride returns the per-tenant ceiling override for a feature,
	// or found=false when the tenant has none configured
	QuotaOverride(ctx context.Context, key, feature string) (limit int64, found bool, err error)

	// SetQuotaOverride configures a per-tenant ceiling override for a feature
	SetQuotaOverride(ctx context.Context, key, feature string, limit int64) error
}
