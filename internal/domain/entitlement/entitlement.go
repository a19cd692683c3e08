// Package entitlement provides domain models and business logic for
// feature entitlement management. An entitlement is the ground truth for
// "what can this user do", independent of usage quotas.
package entitlement

import (
	"fmt"
	"time"
)

// Entitlement represents the entitlement aggregate root.
// It maps (user, tenant, feature) to a grant that can be soft-revoked.
// Revocation never removes the row; the revoked_at timestamp is the
// audit trail the purge step reports against.
type Entitlement struct {
	id        uint
	userID    string
	tenantKey string
	feature   Feature
	source    SourceType
	revokedAt *time.Time
	createdAt time.Time
	updatedAt time.Time
}

// NewEntitlement creates a new active entitlement grant.
func NewEntitlement(userID, tenantKey string, feature Feature, source SourceType) (*Entitlement, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	if !feature.IsValid() {
		return nil, fmt.Errorf("invalid feature: %s", feature)
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid source type: %s", source)
	}

	now := time.Now()
	return &Entitlement{
		userID:    userID,
		tenantKey: tenantKey,
		feature:   feature,
		source:    source,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructEntitlement reconstructs an entitlement from persistence.
func ReconstructEntitlement(
	id uint,
	userID, tenantKey string,
	feature Feature,
	source SourceType,
	revokedAt *time.Time,
	createdAt, updatedAt time.Time,
) (*Entitlement, error) {
	if id == 0 {
		return nil, fmt.Errorf("entitlement ID cannot be zero")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	if !feature.IsValid() {
		return nil, fmt.Errorf("invalid feature: %s", feature)
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid source type: %s", source)
	}

	return &Entitlement{
		id:        id,
		userID:    userID,
		tenantKey: tenantKey,
		feature:   feature,
		source:    source,
		revokedAt: revokedAt,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the entitlement ID
func (e *Entitlement) ID() uint { return e.id }

// UserID returns the user the grant belongs to
func (e *Entitlement) UserID() string { return e.userID }

// TenantKey returns the owning tenant key
func (e *Entitlement) TenantKey() string { return e.tenantKey }

// Feature returns the granted feature
func (e *Entitlement) Feature() Feature { return e.feature }

// Source returns the source of the grant
func (e *Entitlement) Source() SourceType { return e.source }

// RevokedAt returns when the grant was revoked, nil while active
func (e *Entitlement) RevokedAt() *time.Time { return e.revokedAt }

// CreatedAt returns when the grant was created
func (e *Entitlement) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns when the grant was last updated
func (e *Entitlement) UpdatedAt() time.Time { return e.updatedAt }

// SetID sets the entitlement ID (only for persistence layer use)
func (e *Entitlement) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("entitlement ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("entitlement ID cannot be zero")
	}
	e.id = id
	return nil
}

// IsGranted reports whether the grant is currently effective.
func (e *Entitlement) IsGranted() bool {
	return e.revokedAt == nil
}

// Revoke soft-revokes the grant. Revoking an already-revoked grant is a
// no-op so that revoke-all sweeps stay idempotent.
func (e *Entitlement) Revoke() {
	if e.revokedAt != nil {
		return
	}
	now := time.Now()
	e.revokedAt = &now
	e.updatedAt = now
}

// Regrant clears a previous revocation, restoring the grant.
func (e *Entitlement) Regrant() {
	if e.revokedAt == nil {
		return
	}
	e.revokedAt = nil
	e.updatedAt = time.Now()
}
