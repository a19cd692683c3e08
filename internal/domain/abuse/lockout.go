package abuse

import (
	"fmt"
	"time"
)

// Lockout is an explicit access-denial record. At most one active row
// exists per user; an active lockout denies access regardless of
// entitlement state and is consulted ahead of entitlement checks.
type Lockout struct {
	id         uint
	userID     string
	tenantKey  string
	reason     string
	active     bool
	lockedAt   time.Time
	unlockedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewLockout creates an active lockout for the user.
func NewLockout(userID, tenantKey, reason string) (*Lockout, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if reason == "" {
		return nil, fmt.Errorf("lockout reason is required")
	}
	now := time.Now()
	return &Lockout{
		userID:    userID,
		tenantKey: tenantKey,
		reason:    reason,
		active:    true,
		lockedAt:  now,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructLockout reconstructs a lockout from persistence.
func ReconstructLockout(id uint, userID, tenantKey, reason string, active bool, lockedAt time.Time, unlockedAt *time.Time, createdAt, updatedAt time.Time) (*Lockout, error) {
	if id == 0 {
		return nil, fmt.Errorf("lockout ID cannot be zero")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return &Lockout{
		id:         id,
		userID:     userID,
		tenantKey:  tenantKey,
		reason:     reason,
		active:     active,
		lockedAt:   lockedAt,
		unlockedAt: unlockedAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

// ID returns the lockout row ID
func (l *Lockout) ID() uint { return l.id }

// UserID returns the locked user
func (l *Lockout) UserID() string { return l.userID }

// TenantKey returns the user's tenant
func (l *Lockout) TenantKey() string { return l.tenantKey }

// Reason returns the lockout reason
func (l *Lockout) Reason() string { return l.reason }

// IsActive reports whether the lockout is in force
func (l *Lockout) IsActive() bool { return l.active }

// LockedAt returns when the lockout was imposed
func (l *Lockout) LockedAt() time.Time { return l.lockedAt }

// UnlockedAt returns when the lockout was lifted
func (l *Lockout) UnlockedAt() *time.Time { return l.unlockedAt }

// CreatedAt returns when the row was created
func (l *Lockout) CreatedAt() time.Time { return l.createdAt }

// UpdatedAt returns when the row was last updated
func (l *Lockout) UpdatedAt() time.Time { return l.updatedAt }

// SetID sets the lockout row ID (only for persistence layer use)
func (l *Lockout) SetID(id uint) error {
	if l.id != 0 {
		return fmt.Errorf("lockout ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("lockout ID cannot be zero")
	}
	l.id = id
	return nil
}

// Unlock lifts the lockout.
func (l *Lockout) Unlock() error {
	if !l.active {
		return fmt.Errorf("%w: lockout already lifted", ErrNotLocked)
	}
	now := time.Now()
	l.active = false
	l.unlockedAt = &now
	l.updatedAt = now
	return nil
}
