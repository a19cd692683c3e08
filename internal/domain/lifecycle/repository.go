package lifecycle

import (
	"context"
	"time"
)

// TrialRepository defines persistence for trial records.
type TrialRepository interface {
	// Create creates the user's trial; the store enforces one per user and
	// surfaces a conflict on duplicates
	Create(ctx context.Context, t *Trial) error

	// Update persists a status transition
	Update(ctx context.Context, t *Trial) error

	// GetByUser returns the user's trial or ErrTrialNotFound
	GetByUser(ctx context.Context, userID string) (*Trial, error)

	// GetExpiring returns active trials whose end date falls inside the
	// window from now; a pure read for the external scheduler
	GetExpiring(ctx context.Context, window time.Duration) ([]*Trial, error)
}

// ActivationRepository defines persistence for the activation log.
type ActivationRepository interface {
	// GetByUserAndEvent returns the existing row for the pair, or nil when
	// none exists
	GetByUserAndEvent(ctx context.Context, userID, eventName string) (*ActivationEvent, error)

	// Create appends an activation event; the store enforces the
	// (user, event) unique pair
	Create(ctx context.Context, e *ActivationEvent) error

	// IsActivated reports whether any activation row exists for the user
	IsActivated(ctx context.Context, userID string) (bool, error)
}

// OnboardingRepository defines persistence for onboarding state.
type OnboardingRepository interface {
	// Create creates the user's onboarding state
	Create(ctx context.Context, o *Onboarding) error

	// Update persists step progress
	Update(ctx context.Context, o *Onboarding) error

	// GetByUser returns the user's state or ErrOnboardingNotFound
	GetByUser(ctx context.Context, userID string) (*Onboarding, error)
}

// OffboardingRepository defines persistence for offboarding history.
type OffboardingRepository interface {
	// Create appends a new offboarding record
	Create(ctx context.Context, o *Offboarding) error

	// Update persists completion
	Update(ctx context.Context, o *Offboarding) error

	// GetActiveByUser returns the user's uncompleted record, or nil when none
	GetActiveByUser(ctx context.Context, userID string) (*Offboarding, error)

	// GetHistoryByUser returns all records for the user, newest first
	GetHistoryByUser(ctx context.Context, userID string) ([]*Offboarding, error)
}

// ClosureRepository defines persistence for account closure records.
type ClosureRepository interface {
	// Create creates a closure record
	Create(ctx context.Context, c *Closure) error

	// Update persists a status transition
	Update(ctx context.Context, c *Closure) error

	// GetPendingByUser returns the user's pending_purge record, or nil when none
	GetPendingByUser(ctx context.Context, userID string) (*Closure, error)

	// GetLatestByUser returns the user's most recent closure record in any
	// status, or ErrClosureNotFound when the user never requested closure
	GetLatestByUser(ctx context.Context, userID string) (*Closure, error)

	// GetPendingPurges returns every pending_purge record whose deadline
	// has elapsed; a pure read feeding the purge sweep
	GetPendingPurges(ctx context.Context) ([]*Closure, error)
}

// PurgeRepository hard-deletes per-user rows during purge execution.
// Usage counters are deleted by tenant key, not user ID, because that
// table is tenant-keyed; the AI cost log is never touched.
type PurgeRepository interface {
	// PurgeUserData deletes the user's lifecycle, consent, abuse and
	// entitlement rows plus the tenant's usage counters, returning a
	// per-table deleted-row-count map for audit logging. Must be run
	// inside the caller's transaction.
	PurgeUserData(ctx context.Context, userID, tenantKey string) (map[string]int64, error)
}
