// Package tenant provides the tenant aggregate and request context.
// Every other entity in the kernel is scoped to exactly one tenant.
package tenant

import (
	"fmt"
	"time"
)

// Tenant represents an isolated customer unit sharing the platform.
// Deactivation is a boolean flip, never a delete; the auth layer rejects
// all requests for an inactive tenant.
type Tenant struct {
	id        uint
	key       string
	name      string
	planTier  string
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

// NewTenant creates an active tenant with the given natural key.
func NewTenant(key, name, planTier string) (*Tenant, error) {
	if key == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	now := time.Now()
	return &Tenant{
		key:       key,
		name:      name,
		planTier:  planTier,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructTenant reconstructs a tenant from persistence.
func ReconstructTenant(id uint, key, name, planTier string, active bool, createdAt, updatedAt time.Time) (*Tenant, error) {
	if id == 0 {
		return nil, fmt.Errorf("tenant ID cannot be zero")
	}
	if key == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	return &Tenant{
		id:        id,
		key:       key,
		name:      name,
		planTier:  planTier,
		active:    active,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the tenant ID
func (t *Tenant) ID() uint { return t.id }

// Key returns the tenant natural key
func (t *Tenant) Key() string { return t.key }

// Name returns the tenant display name
func (t *Tenant) Name() string { return t.name }

// PlanTier returns the tenant's plan tier name
func (t *Tenant) PlanTier() string { return t.planTier }

// IsActive reports whether the tenant is active
func (t *Tenant) IsActive() bool { return t.active }

// CreatedAt returns when the tenant was created
func (t *Tenant) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns when the tenant was last updated
func (t *Tenant) UpdatedAt() time.Time { return t.updatedAt }

// SetID sets the tenant ID (only for persistence layer use)
func (t *Tenant) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("tenant ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("tenant ID cannot be zero")
	}
	t.id = id
	return nil
}

// Deactivate soft-disables the tenant. Idempotent.
func (t *Tenant) Deactivate() {
	if !t.active {
		return
	}
	t.active = false
	t.updatedAt = time.Now()
}

// Reactivate re-enables the tenant. Idempotent.
func (t *Tenant) Reactivate() {
	if t.active {
		return
	}
	t.active = true
	t.updatedAt = time.Now()
}

// ChangePlanTier moves the tenant to a different plan tier.
func (t *Tenant) ChangePlanTier(tier string) error {
	if tier == "" {
		return fmt.Errorf("plan tier is required")
	}
	t.planTier = tier
	t.updatedAt = time.Now()
	return nil
}
