package consent

import "context"

// Repository defines persistence for consent tracking.
type Repository interface {
	// SetCurrentVersion atomically demotes any existing current row for the
	// doc type and promotes (or creates) the target version. Runs as a
	// compare-and-swap inside one transaction.
	SetCurrentVersion(ctx context.Context, docType DocType, version string) error

	// GetCurrentVersions returns the current version per configured doc
	// type; empty when no versions are configured at all
	GetCurrentVersions(ctx context.Context) (map[DocType]string, error)

	// GetConsent returns the user's latest accepted row for the doc type,
	// or nil when none exists
	GetConsent(ctx context.Context, userID string, docType DocType) (*UserConsent, error)

	// UpsertConsent creates or mutates the single latest-accepted row for
	// the (user, doc type) pair
	UpsertConsent(ctx context.Context, c *UserConsent) error

	// AppendAudit appends an immutable audit row
	AppendAudit(ctx context.Context, a *AuditEntry) error

	// GetAuditTrail returns every audit row for a (user, doc type) pair,
	// oldest first
	GetAuditTrail(ctx context.Context, userID string, docType DocType) ([]*AuditEntry, error)
}
