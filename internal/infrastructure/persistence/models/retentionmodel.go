package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/veyra-inc/veyra/internal/shared/constants"
)

// RetentionPolicyModel represents the database persistence model for
// retention overrides. One row per data type.
type RetentionPolicyModel struct {
	ID            uint   `gorm:"primarykey"`
	DataTypeName  string `gorm:"not null;size:64;uniqueIndex:idx_unique_policy"`
	RetentionDays int    `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (RetentionPolicyModel) TableName() string {
	return constants.TableRetentionPolicies
}

// ArchivedRecordModel represents the database persistence model for
// cold-storage snapshots. Append-only; keyed by tenant + data type +
// original row ID.
type ArchivedRecordModel struct {
	ID           uint   `gorm:"primarykey"`
	TenantKey    string `gorm:"not null;size:64;index:idx_archive_tenant,priority:1"`
	DataTypeName string `gorm:"not null;size:64;index:idx_archive_tenant,priority:2"`
	OriginalID   uint   `gorm:"not null"`
	Payload      datatypes.JSON
	ArchivedAt   time.Time `gorm:"not null"`
	CreatedAt    time.Time
}

// TableName specifies the table name for GORM
func (ArchivedRecordModel) TableName() string {
	return constants.TableArchivedRecords
}

// DataDeletionRequestModel represents the database persistence model for
// GDPR erasure requests.
type DataDeletionRequestModel struct {
	ID          uint   `gorm:"primarykey"`
	RequestID   string `gorm:"not null;size:64;uniqueIndex:idx_unique_deletion_request"`
	UserID      string `gorm:"not null;size:64;index:idx_deletion_user"`
	TenantKey   string `gorm:"not null;size:64"`
	Status      string `gorm:"not null;size:20;default:pending;index:idx_deletion_status_due,priority:1"`
	RequestedAt time.Time `gorm:"not null"`
	DueAt       time.Time `gorm:"not null;index:idx_deletion_status_due,priority:2"`
	CompletedAt *time.Time
	FailReason  string `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (DataDeletionRequestModel) TableName() string {
	return constants.TableDataDeletionRequests
}
