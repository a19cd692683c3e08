package repository

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// TrialRepositoryImpl implements the lifecycle.TrialRepository interface
type TrialRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewTrialRepository creates a new trial repository instance
func NewTrialRepository(gdb *gorm.DB, logger logger.Interface) lifecycle.TrialRepository {
	return &TrialRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create creates the user's trial; the unique user index enforces one
// trial per user ever
func (r *TrialRepositoryImpl) Create(ctx context.Context, t *lifecycle.Trial) error {
	model := &models.TrialRecordModel{
		UserID:     t.UserID(),
		TenantKey:  t.TenantKey(),
		Status:     t.Status().String(),
		StartedAt:  t.StartedAt(),
		EndAt:      t.EndAt(),
		ResolvedAt: t.ResolvedAt(),
		CreatedAt:  t.CreatedAt(),
		UpdatedAt:  t.UpdatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("trial already exists for this user")
		}
		r.logger.Errorw("failed to create trial", "error", err, "user_id", t.UserID())
		return fmt.Errorf("failed to create trial: %w", err)
	}

	if err := t.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set trial ID: %w", err)
	}
	return nil
}

// Update persists a status transition
func (r *TrialRepositoryImpl) Update(ctx context.Context, t *lifecycle.Trial) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TrialRecordModel{}).
		Where("id = ?", t.ID()).
		Updates(map[string]interface{}{
			"status":      t.Status().String(),
			"resolved_at": t.ResolvedAt(),
			"updated_at":  t.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update trial", "error", result.Error, "id", t.ID())
		return fmt.Errorf("failed to update trial: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("trial not found")
	}
	return nil
}

// GetByUser returns the user's trial
func (r *TrialRepositoryImpl) GetByUser(ctx context.Context, userID string) (*lifecycle.Trial, error) {
	var model models.TrialRecordModel
	err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lifecycle.ErrTrialNotFound
		}
		return nil, fmt.Errorf("failed to get trial: %w", err)
	}
	return r.toDomain(&model)
}

// GetExpiring returns active trials ending inside the window from now
func (r *TrialRepositoryImpl) GetExpiring(ctx context.Context, window time.Duration) ([]*lifecycle.Trial, error) {
	now := time.Now()
	var rows []models.TrialRecordModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND end_at > ? AND end_at <= ?", lifecycle.TrialStatusActive.String(), now, now.Add(window)).
		Order("end_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get expiring trials: %w", err)
	}

	trials := make([]*lifecycle.Trial, 0, len(rows))
	for i := range rows {
		t, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		trials = append(trials, t)
	}
	return trials, nil
}

func (r *TrialRepositoryImpl) toDomain(model *models.TrialRecordModel) (*lifecycle.Trial, error) {
	t, err := lifecycle.ReconstructTrial(
		model.ID,
		model.UserID,
		model.TenantKey,
		lifecycle.TrialStatus(model.Status),
		model.StartedAt,
		model.EndAt,
		model.ResolvedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct trial: %w", err)
	}
	return t, nil
}
