// Package repository contains the GORM implementations of the domain
// repository interfaces. Writes go through the transaction on the
// context when one is present.
package repository

import (
	"context"
	goerrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// TenantRepositoryImpl implements the tenant.Repository interface
type TenantRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewTenantRepository creates a new tenant repository instance
func NewTenantRepository(gdb *gorm.DB, logger logger.Interface) tenant.Repository {
	return &TenantRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create creates a new tenant row
func (r *TenantRepositoryImpl) Create(ctx context.Context, t *tenant.Tenant) error {
	model := &models.TenantModel{
		Key:       t.Key(),
		Name:      t.Name(),
		PlanTier:  t.PlanTier(),
		Active:    t.IsActive(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("tenant key already exists")
		}
		r.logger.Errorw("failed to create tenant", "error", err, "tenant_key", t.Key())
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	if err := t.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set tenant ID: %w", err)
	}
	return nil
}

// Update persists changes to an existing tenant
func (r *TenantRepositoryImpl) Update(ctx context.Context, t *tenant.Tenant) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TenantModel{}).
		Where("id = ?", t.ID()).
		Updates(map[string]interface{}{
			"name":       t.Name(),
			"plan_tier":  t.PlanTier(),
			"active":     t.IsActive(),
			"updated_at": t.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update tenant", "error", result.Error, "tenant_key", t.Key())
		return fmt.Errorf("failed to update tenant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("tenant not found")
	}
	return nil
}

// GetByKey retrieves a tenant by its natural key
func (r *TenantRepositoryImpl) GetByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	var model models.TenantModel
	if err := db.GetTxFromContext(ctx, r.db).Where("`key` = ?", key).First(&model).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("tenant not found")
		}
		r.logger.Errorw("failed to get tenant", "error", err, "tenant_key", key)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return r.toDomain(&model)
}

// QuotaOverride returns the per-tenant ceiling override for a feature
func (r *TenantRepositoryImpl) QuotaOverride(ctx context.Context, key, feature string) (int64, bool, error) {
	var model models.QuotaOverrideModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("tenant_key = ? AND feature = ?", key, feature).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get quota override: %w", err)
	}
	return model.LimitValue, true, nil
}

// SetQuotaOverride creates or replaces the override for (tenant, feature)
func (r *TenantRepositoryImpl) SetQuotaOverride(ctx context.Context, key, feature string, limit int64) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.QuotaOverrideModel{}).
		Where("tenant_key = ? AND feature = ?", key, feature).
		Update("limit_value", limit)
	if result.Error != nil {
		return fmt.Errorf("failed to set quota override: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	model := &models.QuotaOverrideModel{
		TenantKey:  key,
		Feature:    feature,
		LimitValue: limit,
	}
	if err := tx.Create(model).Error; err != nil {
		// Lost a race with a concurrent insert; the update path wins.
		if errors.IsDuplicateError(err) {
			return tx.Model(&models.QuotaOverrideModel{}).
				Where("tenant_key = ? AND feature = ?", key, feature).
				Update("limit_value", limit).Error
		}
		r.logger.Errorw("failed to create quota override", "error", err, "tenant_key", key, "feature", feature)
		return fmt.Errorf("failed to set quota override: %w", err)
	}
	return nil
}

func (r *TenantRepositoryImpl) toDomain(model *models.TenantModel) (*tenant.Tenant, error) {
	t, err := tenant.ReconstructTenant(
		model.ID,
		model.Key,
		model.Name,
		model.PlanTier,
		model.Active,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct tenant: %w", err)
	}
	return t, nil
}
