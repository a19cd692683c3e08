// Package models contains the GORM persistence models. They are the
// anti-corruption layer between the domain aggregates and the database;
// repositories map between the two on every read and write.
package models

import (
	"time"

	"github.com/veyra-inc/veyra/internal/shared/constants"
)

// TenantModel represents the database persistence model for tenants
type TenantModel struct {
	ID        uint   `gorm:"primarykey"`
	Key       string `gorm:"not null;size:64;uniqueIndex:idx_tenant_key"`
	Name      string `gorm:"size:255"`
	PlanTier  string `gorm:"not null;size:20;default:free"`
	Active    bool   `gorm:"not null;default:true;index:idx_tenant_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (TenantModel) TableName() string {
	return constants.TableTenants
}

// QuotaOverrideModel stores per-tenant ceiling overrides, resolved ahead
// of the static tier table. At most one row per (tenant, feature).
type QuotaOverrideModel struct {
	ID         uint   `gorm:"primarykey"`
	TenantKey  string `gorm:"not null;size:64;uniqueIndex:idx_override_tenant_feature,priority:1"`
	Feature    string `gorm:"not null;size:30;uniqueIndex:idx_override_tenant_feature,priority:2"`
	LimitValue int64  `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (QuotaOverrideModel) TableName() string {
	return constants.TableQuotaOverrides
}
