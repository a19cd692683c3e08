package repository

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// EntitlementRepositoryImpl implements the entitlement.Repository interface
type EntitlementRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewEntitlementRepository creates a new entitlement repository instance
func NewEntitlementRepository(gdb *gorm.DB, logger logger.Interface) entitlement.Repository {
	return &EntitlementRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create creates a new entitlement grant row
func (r *EntitlementRepositoryImpl) Create(ctx context.Context, e *entitlement.Entitlement) error {
	model := &models.UserEntitlementModel{
		UserID:    e.UserID(),
		TenantKey: e.TenantKey(),
		Feature:   e.Feature().String(),
		Source:    e.Source().String(),
		RevokedAt: e.RevokedAt(),
		CreatedAt: e.CreatedAt(),
		UpdatedAt: e.UpdatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("entitlement grant already exists")
		}
		r.logger.Errorw("failed to create entitlement",
			"error", err,
			"user_id", e.UserID(),
			"feature", e.Feature(),
		)
		return fmt.Errorf("failed to create entitlement: %w", err)
	}

	if err := e.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set entitlement ID: %w", err)
	}
	return nil
}

// Update persists revocation or regrant
func (r *EntitlementRepositoryImpl) Update(ctx context.Context, e *entitlement.Entitlement) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserEntitlementModel{}).
		Where("id = ?", e.ID()).
		Updates(map[string]interface{}{
			"revoked_at": e.RevokedAt(),
			"updated_at": e.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update entitlement", "error", result.Error, "id", e.ID())
		return fmt.Errorf("failed to update entitlement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("entitlement not found")
	}
	return nil
}

// GetByUserAndFeature retrieves the grant row for the triple
func (r *EntitlementRepositoryImpl) GetByUserAndFeature(ctx context.Context, userID, tenantKey string, feature entitlement.Feature) (*entitlement.Entitlement, error) {
	var model models.UserEntitlementModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND tenant_key = ? AND feature = ?", userID, tenantKey, feature.String()).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("entitlement not found")
		}
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	return r.toDomain(&model)
}

// GetByUser retrieves all grant rows for a user within a tenant
func (r *EntitlementRepositoryImpl) GetByUser(ctx context.Context, userID, tenantKey string) ([]*entitlement.Entitlement, error) {
	var rows []models.UserEntitlementModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND tenant_key = ?", userID, tenantKey).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get entitlements: %w", err)
	}

	grants := make([]*entitlement.Entitlement, 0, len(rows))
	for i := range rows {
		e, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		grants = append(grants, e)
	}
	return grants, nil
}

// HasActive reports whether an unrevoked grant exists for the triple
func (r *EntitlementRepositoryImpl) HasActive(ctx context.Context, userID, tenantKey string, feature entitlement.Feature) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserEntitlementModel{}).
		Where("user_id = ? AND tenant_key = ? AND feature = ? AND revoked_at IS NULL", userID, tenantKey, feature.String()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return count > 0, nil
}

// RevokeAllByUser soft-revokes every active grant for the user. Rows
// already revoked are untouched, so the sweep is idempotent.
func (r *EntitlementRepositoryImpl) RevokeAllByUser(ctx context.Context, userID, tenantKey string) (int64, error) {
	now := time.Now()
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserEntitlementModel{}).
		Where("user_id = ? AND tenant_key = ? AND revoked_at IS NULL", userID, tenantKey).
		Updates(map[string]interface{}{
			"revoked_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to revoke all entitlements", "error", result.Error, "user_id", userID)
		return 0, fmt.Errorf("failed to revoke entitlements: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *EntitlementRepositoryImpl) toDomain(model *models.UserEntitlementModel) (*entitlement.Entitlement, error) {
	e, err := entitlement.ReconstructEntitlement(
		model.ID,
		model.UserID,
		model.TenantKey,
		entitlement.Feature(model.Feature),
		entitlement.SourceType(model.Source),
		model.RevokedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct entitlement: %w", err)
	}
	return e, nil
}
