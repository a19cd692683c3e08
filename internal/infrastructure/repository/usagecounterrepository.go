package repository

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veyra-inc/veyra/internal/domain/usage"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// UsageCounterRepositoryImpl implements the usage.CounterRepository
// interface. The check-then-increment runs under SELECT ... FOR UPDATE
// inside one transaction so two concurrent requests cannot both pass the
// boundary check.
type UsageCounterRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewUsageCounterRepository creates a new usage counter repository instance
func NewUsageCounterRepository(gdb *gorm.DB, logger logger.Interface) usage.CounterRepository {
	return &UsageCounterRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// CheckAndIncrement atomically verifies the counter is under ceiling and
// increments it, lazily creating the row. Returns usage.ErrLimitExceeded
// without incrementing when the counter is at or over the ceiling.
func (r *UsageCounterRepositoryImpl) CheckAndIncrement(ctx context.Context, tenantKey, feature, periodKey string, ceiling int64) (int64, error) {
	var newCount int64
	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		count, err := r.tryIncrement(tx, tenantKey, feature, periodKey, ceiling)
		if err != nil {
			return err
		}
		newCount = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newCount, nil
}

func (r *UsageCounterRepositoryImpl) tryIncrement(tx *gorm.DB, tenantKey, feature, periodKey string, ceiling int64) (int64, error) {
	var model models.UsageCounterModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_key = ? AND feature = ? AND period_key = ?", tenantKey, feature, periodKey).
		First(&model).Error

	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		if ceiling != usage.Unlimited && ceiling <= 0 {
			return 0, usage.ErrLimitExceeded
		}
		now := time.Now()
		model = models.UsageCounterModel{
			TenantKey: tenantKey,
			Feature:   feature,
			PeriodKey: periodKey,
			Count:     1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if createErr := tx.Create(&model).Error; createErr != nil {
			// Lost the insert race; lock the winner's row and go through
			// the normal increment path.
			if errors.IsDuplicateError(createErr) {
				return r.lockAndIncrement(tx, tenantKey, feature, periodKey, ceiling)
			}
			return 0, fmt.Errorf("failed to create usage counter: %w", createErr)
		}
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock usage counter: %w", err)
	}

	return r.incrementLocked(tx, &model, ceiling)
}

func (r *UsageCounterRepositoryImpl) lockAndIncrement(tx *gorm.DB, tenantKey, feature, periodKey string, ceiling int64) (int64, error) {
	var model models.UsageCounterModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_key = ? AND feature = ? AND period_key = ?", tenantKey, feature, periodKey).
		First(&model).Error
	if err != nil {
		return 0, fmt.Errorf("failed to lock usage counter: %w", err)
	}
	return r.incrementLocked(tx, &model, ceiling)
}

func (r *UsageCounterRepositoryImpl) incrementLocked(tx *gorm.DB, model *models.UsageCounterModel, ceiling int64) (int64, error) {
	if ceiling != usage.Unlimited && model.Count >= ceiling {
		return 0, usage.ErrLimitExceeded
	}

	newCount := model.Count + 1
	result := tx.Model(&models.UsageCounterModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"count":      newCount,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to increment usage counter", "error", result.Error, "id", model.ID)
		return 0, fmt.Errorf("failed to increment usage counter: %w", result.Error)
	}
	return newCount, nil
}

// GetCount returns the current count for the triple, zero when no row
// exists yet.
func (r *UsageCounterRepositoryImpl) GetCount(ctx context.Context, tenantKey, feature, periodKey string) (int64, error) {
	var model models.UsageCounterModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("tenant_key = ? AND feature = ? AND period_key = ?", tenantKey, feature, periodKey).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get usage counter: %w", err)
	}
	return model.Count, nil
}
