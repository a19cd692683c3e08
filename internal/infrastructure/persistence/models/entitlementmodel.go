package models

import (
	"time"

	"github.com/veyra-inc/veyra/internal/shared/constants"
)

// UserEntitlementModel represents the database persistence model for
// entitlement grants. Revocation is soft: RevokedAt is set, the row
// stays. One row per (user, tenant, feature).
type UserEntitlementModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    string `gorm:"not null;size:64;uniqueIndex:idx_unique_grant,priority:1;index:idx_grant_user,priority:1"`
	TenantKey string `gorm:"not null;size:64;uniqueIndex:idx_unique_grant,priority:2;index:idx_grant_user,priority:2"`
	Feature   string `gorm:"not null;size:30;uniqueIndex:idx_unique_grant,priority:3"`
	Source    string `gorm:"not null;size:20"`
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (UserEntitlementModel) TableName() string {
	return constants.TableUserEntitlements
}
