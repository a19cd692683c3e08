package repository

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/retention"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// RetentionPolicyRepositoryImpl implements the retention.PolicyRepository
// interface
type RetentionPolicyRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewRetentionPolicyRepository creates a new retention policy repository instance
func NewRetentionPolicyRepository(gdb *gorm.DB, logger logger.Interface) retention.PolicyRepository {
	return &RetentionPolicyRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Upsert creates or replaces the single policy row for a data type
func (r *RetentionPolicyRepositoryImpl) Upsert(ctx context.Context, p *retention.Policy) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.RetentionPolicyModel{}).
		Where("data_type_name = ?", p.DataTypeName()).
		Updates(map[string]interface{}{
			"retention_days": p.RetentionDays(),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update retention policy: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	model := &models.RetentionPolicyModel{
		DataTypeName:  p.DataTypeName(),
		RetentionDays: p.RetentionDays(),
	}
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			// lost an insert race; the other writer's row wins
			return tx.Model(&models.RetentionPolicyModel{}).
				Where("data_type_name = ?", p.DataTypeName()).
				Updates(map[string]interface{}{
					"retention_days": p.RetentionDays(),
					"updated_at":     time.Now(),
				}).Error
		}
		r.logger.Errorw("failed to create retention policy", "error", err, "data_type", p.DataTypeName())
		return fmt.Errorf("failed to create retention policy: %w", err)
	}
	return nil
}

// GetByDataType returns the policy for a data type, or nil when the
// default window applies
func (r *RetentionPolicyRepositoryImpl) GetByDataType(ctx context.Context, dataTypeName string) (*retention.Policy, error) {
	var model models.RetentionPolicyModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("data_type_name = ?", dataTypeName).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get retention policy: %w", err)
	}
	return r.toDomain(&model)
}

// GetAll returns every configured policy override
func (r *RetentionPolicyRepositoryImpl) GetAll(ctx context.Context) ([]*retention.Policy, error) {
	var rows []models.RetentionPolicyModel
	err := db.GetTxFromContext(ctx, r.db).
		Order("data_type_name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get retention policies: %w", err)
	}

	policies := make([]*retention.Policy, 0, len(rows))
	for i := range rows {
		p, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func (r *RetentionPolicyRepositoryImpl) toDomain(model *models.RetentionPolicyModel) (*retention.Policy, error) {
	p, err := retention.ReconstructPolicy(
		model.ID,
		model.DataTypeName,
		model.RetentionDays,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct retention policy: %w", err)
	}
	return p, nil
}
