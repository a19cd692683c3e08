package models

import (
	"time"

	"github.com/veyra-inc/veyra/internal/shared/constants"
)

// LegalDocVersionModel represents the database persistence model for
// legal document versions. CurrentKey mirrors DocType on the single
// current row and is NULL otherwise, so the unique index guarantees
// exactly one current version per doc type while history persists.
type LegalDocVersionModel struct {
	ID          uint    `gorm:"primarykey"`
	DocType     string  `gorm:"not null;size:20;uniqueIndex:idx_unique_doc_version,priority:1"`
	Version     string  `gorm:"not null;size:32;uniqueIndex:idx_unique_doc_version,priority:2"`
	Current     bool    `gorm:"not null;default:false"`
	CurrentKey  *string `gorm:"size:20;uniqueIndex:idx_unique_current_doc"`
	PublishedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (LegalDocVersionModel) TableName() string {
	return constants.TableLegalDocVersions
}

// UserConsentModel represents the database persistence model for the
// latest accepted version per (user, doc type). Mutated in place on
// re-acceptance; history lives in the audit log.
type UserConsentModel struct {
	ID         uint   `gorm:"primarykey"`
	UserID     string `gorm:"not null;size:64;uniqueIndex:idx_unique_consent,priority:1"`
	TenantKey  string `gorm:"not null;size:64;index:idx_consent_tenant"`
	DocType    string `gorm:"not null;size:20;uniqueIndex:idx_unique_consent,priority:2"`
	Version    string `gorm:"not null;size:32"`
	AcceptedAt time.Time `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (UserConsentModel) TableName() string {
	return constants.TableUserConsents
}

// ConsentAuditLogModel represents the database persistence model for the
// append-only consent audit trail. One row per consent event.
type ConsentAuditLogModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    string `gorm:"not null;size:64;index:idx_consent_audit_user,priority:1"`
	TenantKey string `gorm:"not null;size:64;index:idx_consent_audit_tenant"`
	DocType   string `gorm:"not null;size:20;index:idx_consent_audit_user,priority:2"`
	Version   string `gorm:"not null;size:32"`
	IPAddress string `gorm:"size:45"`
	UserAgent string `gorm:"size:512"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (ConsentAuditLogModel) TableName() string {
	return constants.TableConsentAuditLogs
}
