package usage

import (
	"context"
	"time"
)

// CounterRepository defines persistence for usage counters.
type CounterRepository interface {
	// CheckAndIncrement atomically verifies the counter for the triple is
	// under ceiling and increments it, lazily creating the row. The
	// check-then-increment must run under a row lock inside one
	// transaction so concurrent requests cannot both pass the boundary.
	// Returns ErrLimitExceeded without incrementing when at or over the
	// ceiling; Unlimited always passes.
	CheckAndIncrement(ctx context.Context, tenantKey, feature, periodKey string, ceiling int64) (int64, error)

	// GetCount returns the current count for the triple, zero when no row
	// exists yet.
	GetCount(ctx context.Context, tenantKey, feature, periodKey string) (int64, error)
}

// CostLogRepository defines persistence for the AI cost log.
type CostLogRepository interface {
	// Append appends a cost log row
	Append(ctx context.Context, entry *CostLogEntry) error

	// CountByUserSince counts rows for a user created after the cutoff,
	// computed fresh on every call (sliding abuse window)
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int64, error)

	// GetByUser returns all cost rows for a user (audit queries)
	GetByUser(ctx context.Context, userID string) ([]*CostLogEntry, error)

	// SumCostCentsByTenant sums the cost of a tenant's calls in a window
	SumCostCentsByTenant(ctx context.Context, tenantKey string, from, to time.Time) (int64, error)
}
