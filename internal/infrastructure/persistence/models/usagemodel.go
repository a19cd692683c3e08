package models

import (
	"time"

	"github.com/veyra-inc/veyra/internal/shared/constants"
)

// UsageCounterModel represents the database persistence model for the
// quota ledger. At most one row per (tenant, feature, period) triple;
// the unique index is what makes the lazy create race-safe.
type UsageCounterModel struct {
	ID        uint   `gorm:"primarykey"`
	TenantKey string `gorm:"not null;size:64;uniqueIndex:idx_unique_counter,priority:1"`
	Feature   string `gorm:"not null;size:30;uniqueIndex:idx_unique_counter,priority:2"`
	PeriodKey string `gorm:"not null;size:7;uniqueIndex:idx_unique_counter,priority:3"`
	Count     int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (UsageCounterModel) TableName() string {
	return constants.TableUsageCounters
}

// AICostLogModel represents the database persistence model for the AI
// cost log. Append-only; never deleted by account purge.
type AICostLogModel struct {
	ID         uint   `gorm:"primarykey"`
	UserID     string `gorm:"not null;size:64;index:idx_cost_user_created,priority:1"`
	TenantKey  string `gorm:"not null;size:64;index:idx_cost_tenant"`
	Model      string `gorm:"size:64"`
	TokensUsed int64  `gorm:"not null;default:0"`
	CostCents  int64  `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"index:idx_cost_user_created,priority:2"`
}

// TableName specifies the table name for GORM
func (AICostLogModel) TableName() string {
	return constants.TableAICostLogs
}
