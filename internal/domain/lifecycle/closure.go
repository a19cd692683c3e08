package lifecycle

import (
	"fmt"
	"time"
)

// Closure represents an account closure record: none → pending_purge →
// {purged | reactivated}, both terminal. The purge deadline is fixed at
// initiation (requested_at + grace period) and drives the external
// purge sweep; this record performs no time-based triggering itself.
type Closure struct {
	id          uint
	userID      string
	tenantKey   string
	status      ClosureStatus
	requestedAt time.Time
	purgeAt     time.Time
	purgedAt    *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewClosure creates a pending_purge closure with the given grace period.
func NewClosure(userID, tenantKey string, graceDays int) (*Closure, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	if graceDays <= 0 {
		return nil, fmt.Errorf("grace period must be positive")
	}
	now := time.Now()
	return &Closure{
		userID:      userID,
		tenantKey:   tenantKey,
		status:      ClosureStatusPendingPurge,
		requestedAt: now,
		purgeAt:     now.Add(time.Duration(graceDays) * 24 * time.Hour),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructClosure reconstructs a closure record from persistence.
func ReconstructClosure(id uint, userID, tenantKey string, status ClosureStatus, requestedAt, purgeAt time.Time, purgedAt *time.Time, createdAt, updatedAt time.Time) (*Closure, error) {
	if id == 0 {
		return nil, fmt.Errorf("closure ID cannot be zero")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid closure status: %s", status)
	}
	return &Closure{
		id:          id,
		userID:      userID,
		tenantKey:   tenantKey,
		status:      status,
		requestedAt: requestedAt,
		purgeAt:     purgeAt,
		purgedAt:    purgedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the closure record ID
func (c *Closure) ID() uint { return c.id }

// UserID returns the closing user
func (c *Closure) UserID() string { return c.userID }

// TenantKey returns the tenant being closed
func (c *Closure) TenantKey() string { return c.tenantKey }

// Status returns the closure status
func (c *Closure) Status() ClosureStatus { return c.status }

// RequestedAt returns when closure was initiated
func (c *Closure) RequestedAt() time.Time { return c.requestedAt }

// PurgeAt returns the fixed purge deadline
func (c *Closure) PurgeAt() time.Time { return c.purgeAt }

// PurgedAt returns when the purge executed
func (c *Closure) PurgedAt() *time.Time { return c.purgedAt }

// CreatedAt returns when the row was created
func (c *Closure) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns when the row was last updated
func (c *Closure) UpdatedAt() time.Time { return c.updatedAt }

// SetID sets the closure record ID (only for persistence layer use)
func (c *Closure) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("closure ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("closure ID cannot be zero")
	}
	c.id = id
	return nil
}

// IsPending reports whether the grace period is still running.
func (c *Closure) IsPending() bool {
	return c.status == ClosureStatusPendingPurge
}

// IsDue reports whether the purge deadline has elapsed.
func (c *Closure) IsDue() bool {
	return c.status == ClosureStatusPendingPurge && !time.Now().Before(c.purgeAt)
}

// MarkPurged transitions pending_purge → purged.
func (c *Closure) MarkPurged() error {
	if c.status != ClosureStatusPendingPurge {
		return fmt.Errorf("%w: closure is %s", ErrClosureNotPending, c.status)
	}
	now := time.Now()
	c.status = ClosureStatusPurged
	c.purgedAt = &now
	c.updatedAt = now
	return nil
}

// Reactivate transitions pending_purge → reactivated.
func (c *Closure) Reactivate() error {
	if c.status != ClosureStatusPendingPurge {
		return fmt.Errorf("%w: closure is %s", ErrClosureNotPending, c.status)
	}
	c.status = ClosureStatusReactivated
	c.updatedAt = time.Now()
	return nil
}
