package repository

import (
	"context"
	goerrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// OffboardingRepositoryImpl implements the
// lifecycle.OffboardingRepository interface
type OffboardingRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewOffboardingRepository creates a new offboarding repository instance
func NewOffboardingRepository(gdb *gorm.DB, logger logger.Interface) lifecycle.OffboardingRepository {
	return &OffboardingRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create appends a new offboarding record
func (r *OffboardingRepositoryImpl) Create(ctx context.Context, o *lifecycle.Offboarding) error {
	model := &models.OffboardingRecordModel{
		UserID:      o.UserID(),
		TenantKey:   o.TenantKey(),
		Reason:      o.Reason().String(),
		Feedback:    o.Feedback(),
		InitiatedAt: o.InitiatedAt(),
		CompletedAt: o.CompletedAt(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create offboarding record", "error", err, "user_id", o.UserID())
		return fmt.Errorf("failed to create offboarding record: %w", err)
	}

	if err := o.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set offboarding ID: %w", err)
	}
	return nil
}

// Update persists completion
func (r *OffboardingRepositoryImpl) Update(ctx context.Context, o *lifecycle.Offboarding) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OffboardingRecordModel{}).
		Where("id = ?", o.ID()).
		Updates(map[string]interface{}{
			"completed_at": o.CompletedAt(),
			"updated_at":   o.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update offboarding record", "error", result.Error, "id", o.ID())
		return fmt.Errorf("failed to update offboarding record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("offboarding record not found")
	}
	return nil
}

// GetActiveByUser returns the user's uncompleted record, or nil
func (r *OffboardingRepositoryImpl) GetActiveByUser(ctx context.Context, userID string) (*lifecycle.Offboarding, error) {
	var model models.OffboardingRecordModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND completed_at IS NULL", userID).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active offboarding: %w", err)
	}
	return r.toDomain(&model)
}

// GetHistoryByUser returns all records for the user, newest first
func (r *OffboardingRepositoryImpl) GetHistoryByUser(ctx context.Context, userID string) ([]*lifecycle.Offboarding, error) {
	var rows []models.OffboardingRecordModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get offboarding history: %w", err)
	}

	records := make([]*lifecycle.Offboarding, 0, len(rows))
	for i := range rows {
		record, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *OffboardingRepositoryImpl) toDomain(model *models.OffboardingRecordModel) (*lifecycle.Offboarding, error) {
	o, err := lifecycle.ReconstructOffboarding(
		model.ID,
		model.UserID,
		model.TenantKey,
		lifecycle.OffboardingReason(model.Reason),
		model.Feedback,
		model.InitiatedAt,
		model.CompletedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct offboarding record: %w", err)
	}
	return o, nil
}
