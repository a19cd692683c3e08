package retention

import (
	"fmt"
	"time"
)

// ArchivedRecord is an append-only JSON snapshot of one row moved to
// cold storage before deletion from the hot table.
type ArchivedRecord struct {
	id           uint
	tenantKey    string
	dataTypeName string
	originalID   uint
	payload      map[string]any
	archivedAt   time.Time
	createdAt    time.Time
}

// NewArchivedRecord snapshots one hot row for a tenant-scoped data type.
func NewArchivedRecord(tenantKey, dataTypeName string, originalID uint, payload map[string]any) (*ArchivedRecord, error) {
	if tenantKey == "" {
		return nil, fmt.Errorf("tenant key is required")
	}
	dt, ok := Lookup(dataTypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataType, dataTypeName)
	}
	if !dt.IsTenantScoped() {
		return nil, fmt.Errorf("%w: %s is not tenant-scoped", ErrNotArchivable, dataTypeName)
	}
	if originalID == 0 {
		return nil, fmt.Errorf("original row ID cannot be zero")
	}
	now := time.Now()
	return &ArchivedRecord{
		tenantKey:    tenantKey,
		dataTypeName: dataTypeName,
		originalID:   originalID,
		payload:      payload,
		archivedAt:   now,
		createdAt:    now,
	}, nil
}

// ReconstructArchivedRecord reconstructs an archived record from persistence.
func ReconstructArchivedRecord(id uint, tenantKey, dataTypeName string, originalID uint, payload map[string]any, archivedAt, createdAt time.Time) (*ArchivedRecord, error) {
	if id == 0 {
		return nil, fmt.Errorf("archived record ID cannot be zero")
	}
	return &ArchivedRecord{
		id:           id,
		tenantKey:    tenantKey,
		dataTypeName: dataTypeName,
		originalID:   originalID,
		payload:      payload,
		archivedAt:   archivedAt,
		createdAt:    createdAt,
	}, nil
}

// ID returns the archive row ID
func (a *ArchivedRecord) ID() uint { return a.id }

// TenantKey returns the owning tenant
func (a *ArchivedRecord) TenantKey() string { return a.tenantKey }

// DataTypeName returns the archived data type
func (a *ArchivedRecord) DataTypeName() string { return a.dataTypeName }

// OriginalID returns the hot-table row ID the snapshot came from
func (a *ArchivedRecord) OriginalID() uint { return a.originalID }

// Payload returns the snapshotted row as a generic document
func (a *ArchivedRecord) Payload() map[string]any { return a.payload }

// ArchivedAt returns when the snapshot was taken
func (a *ArchivedRecord) ArchivedAt() time.Time { return a.archivedAt }
