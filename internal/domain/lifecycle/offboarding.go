package lifecycle

import (
	"fmt"
	"time"
)

// Offboarding is one row of the append-only offboarding history. At most
// one record per user may be active (completed_at IS NULL); a user may
// offboard again only after the prior record completed. This module does
// pure state bookkeeping: payment cancellation and email belong to the
// calling layer.
type Offboarding struct {
	id          uint
	userID      string
	tenantKey   string
	reason      OffboardingReason
	feedback    string
	initiatedAt time.Time
	completedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewOffboarding initiates an offboarding record.
func NewOffboarding(userID, tenantKey string, reason OffboardingReason, feedback string) (*Offboarding, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	if !reason.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOffboardingReason, reason)
	}
	now := time.Now()
	return &Offboarding{
		userID:      userID,
		tenantKey:   tenantKey,
		reason:      reason,
		feedback:    feedback,
		initiatedAt: now,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructOffboarding reconstructs an offboarding record from persistence.
func ReconstructOffboarding(id uint, userID, tenantKey string, reason OffboardingReason, feedback string, initiatedAt time.Time, completedAt *time.Time, createdAt, updatedAt time.Time) (*Offboarding, error) {
	if id == 0 {
		return nil, fmt.Errorf("offboarding ID cannot be zero")
	}
	if !reason.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOffboardingReason, reason)
	}
	return &Offboarding{
		id:          id,
		userID:      userID,
		tenantKey:   tenantKey,
		reason:      reason,
		feedback:    feedback,
		initiatedAt: initiatedAt,
		completedAt: completedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the record ID
func (o *Offboarding) ID() uint { return o.id }

// UserID returns the offboarding user
func (o *Offboarding) UserID() string { return o.userID }

// TenantKey returns the owning tenant key
func (o *Offboarding) TenantKey() string { return o.tenantKey }

// Reason returns the enumerated cancellation reason
func (o *Offboarding) Reason() OffboardingReason { return o.reason }

// Feedback returns the free-form feedback text
func (o *Offboarding) Feedback() string { return o.feedback }

// InitiatedAt returns when offboarding was initiated
func (o *Offboarding) InitiatedAt() time.Time { return o.initiatedAt }

// CompletedAt returns when offboarding completed, nil while active
func (o *Offboarding) CompletedAt() *time.Time { return o.completedAt }

// CreatedAt returns when the row was created
func (o *Offboarding) CreatedAt() time.Time { return o.createdAt }

// UpdatedAt returns when the row was last updated
func (o *Offboarding) UpdatedAt() time.Time { return o.updatedAt }

// SetID sets the record ID (only for persistence layer use)
func (o *Offboarding) SetID(id uint) error {
	if o.id != 0 {
		return fmt.Errorf("offboarding ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("offboarding ID cannot be zero")
	}
	o.id = id
	return nil
}

// IsActive reports whether this record is still the user's open offboarding.
func (o *Offboarding) IsActive() bool {
	return o.completedAt == nil
}

// Complete stamps completion on the record.
func (o *Offboarding) Complete() error {
	if o.completedAt != nil {
		return fmt.Errorf("%w: offboarding already completed", ErrOffboardingNotActive)
	}
	now := time.Now()
	o.completedAt = &now
	o.updatedAt = now
	return nil
}
