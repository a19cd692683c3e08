package abuse

import "context"

// FraudEventRepository defines persistence for fraud events.
type FraudEventRepository interface {
	// Create appends a fraud event
	Create(ctx context.Context, e *FraudEvent) error

	// Update persists resolution
	Update(ctx context.Context, e *FraudEvent) error

	// GetByID returns the event with the given row ID
	GetByID(ctx context.Context, id uint) (*FraudEvent, error)

	// GetUnresolved returns unresolved events, newest first
	GetUnresolved(ctx context.Context, limit int) ([]*FraudEvent, error)

	// GetByUser returns all events for a user, newest first
	GetByUser(ctx context.Context, userID string) ([]*FraudEvent, error)
}

// LockoutRepository defines persistence for account lockouts.
type LockoutRepository interface {
	// Create creates a lockout row; the store enforces at most one active
	// row per user and surfaces a conflict on a second active lock
	Create(ctx context.Context, l *Lockout) error

	// Update persists an unlock
	Update(ctx context.Context, l *Lockout) error

	// GetActiveByUser returns the user's active lockout, or nil when none
	GetActiveByUser(ctx context.Context, userID string) (*Lockout, error)

	// IsLocked reports whether an active lockout exists for the user
	IsLocked(ctx context.Context, userID string) (bool, error)
}
