package retention

import (
	"context"
	"time"
)

// PolicyRepository defines persistence for retention policy overrides.
type PolicyRepository interface {
	// Upsert creates or replaces the single policy row for a data type
	Upsert(ctx context.Context, p *Policy) error

	// GetByDataType returns the policy for a data type, or nil when the
	// default window applies
	GetByDataType(ctx context.Context, dataTypeName string) (*Policy, error)

	// GetAll returns every configured policy override
	GetAll(ctx context.Context) ([]*Policy, error)
}

// SweepRepository performs bulk row operations against the hot tables
// named by the registry. Implementations route by DataType, never by
// caller-supplied table names.
type SweepRepository interface {
	// DeleteOlderThan hard-deletes rows of dt whose date column is before
	// cutoff and returns the number removed
	DeleteOlderThan(ctx context.Context, dt DataType, cutoff time.Time) (int64, error)

	// SnapshotOlderThan reads rows of dt for one tenant older than cutoff
	// as generic documents, keyed by original row ID
	SnapshotOlderThan(ctx context.Context, dt DataType, tenantKey string, cutoff time.Time) (map[uint]map[string]any, error)

	// DeleteByIDs hard-deletes specific rows of dt and returns the number
	// removed
	DeleteByIDs(ctx context.Context, dt DataType, ids []uint) (int64, error)
}

// ArchiveRepository defines persistence for cold-storage snapshots.
type ArchiveRepository interface {
	// Create appends one archived record
	Create(ctx context.Context, a *ArchivedRecord) error

	// GetByTenant returns archived records for a tenant, newest first
	GetByTenant(ctx context.Context, tenantKey string, limit int) ([]*ArchivedRecord, error)
}

// DeletionRequestRepository defines persistence for GDPR erasure requests.
type DeletionRequestRepository interface {
	// Create persists a new deletion request and sets its ID
	Create(ctx context.Context, r *DeletionRequest) error

	// Update persists state transitions
	Update(ctx context.Context, r *DeletionRequest) error

	// GetByRequestID returns the request with the external identifier
	GetByRequestID(ctx context.Context, requestID string) (*DeletionRequest, error)

	// GetOverdue returns requests past their SLA deadline that are not
	// completed, oldest deadline first
	GetOverdue(ctx context.Context, now time.Time) ([]*DeletionRequest, error)
}
