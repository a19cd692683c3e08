package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/veyra-inc/veyra/internal/shared/constants"
)

// FraudEventModel represents the database persistence model for fraud
// events. Append-only; Resolved flips on review.
type FraudEventModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    string `gorm:"not null;size:64;index:idx_fraud_user"`
	TenantKey string `gorm:"not null;size:64;index:idx_fraud_tenant"`
	EventType string `gorm:"not null;size:30"`
	Severity  string `gorm:"not null;size:10"`
	Detail    datatypes.JSON
	Resolved  bool `gorm:"not null;default:false;index:idx_fraud_resolved"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (FraudEventModel) TableName() string {
	return constants.TableFraudEvents
}

// AccountLockoutModel represents the database persistence model for
// lockouts. ActiveKey mirrors UserID while the lock is active and is
// NULL once lifted, so the unique index allows many historical rows but
// only one active lock per user.
type AccountLockoutModel struct {
	ID         uint    `gorm:"primarykey"`
	UserID     string  `gorm:"not null;size:64;index:idx_lockout_user"`
	TenantKey  string  `gorm:"not null;size:64"`
	Reason     string  `gorm:"size:255"`
	Active     bool    `gorm:"not null;default:true"`
	ActiveKey  *string `gorm:"size:64;uniqueIndex:idx_unique_active_lockout"`
	LockedAt   time.Time `gorm:"not null"`
	UnlockedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (AccountLockoutModel) TableName() string {
	return constants.TableAccountLockouts
}
