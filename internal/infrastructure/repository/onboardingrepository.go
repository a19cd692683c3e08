package repository

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// OnboardingRepositoryImpl implements the lifecycle.OnboardingRepository
// interface. Steps are stored as a JSON array; JSON text exists only
// here at the persistence boundary.
type OnboardingRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewOnboardingRepository creates a new onboarding repository instance
func NewOnboardingRepository(gdb *gorm.DB, logger logger.Interface) lifecycle.OnboardingRepository {
	return &OnboardingRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create creates the user's onboarding state
func (r *OnboardingRepositoryImpl) Create(ctx context.Context, o *lifecycle.Onboarding) error {
	steps, err := marshalSteps(o.Steps())
	if err != nil {
		return fmt.Errorf("failed to encode onboarding steps: %w", err)
	}

	model := &models.OnboardingStateModel{
		UserID:      o.UserID(),
		TenantKey:   o.TenantKey(),
		Steps:       steps,
		CompletedAt: o.CompletedAt(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("onboarding state already exists")
		}
		r.logger.Errorw("failed to create onboarding state", "error", err, "user_id", o.UserID())
		return fmt.Errorf("failed to create onboarding state: %w", err)
	}

	if err := o.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set onboarding ID: %w", err)
	}
	return nil
}

// Update persists step progress
func (r *OnboardingRepositoryImpl) Update(ctx context.Context, o *lifecycle.Onboarding) error {
	steps, err := marshalSteps(o.Steps())
	if err != nil {
		return fmt.Errorf("failed to encode onboarding steps: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OnboardingStateModel{}).
		Where("id = ?", o.ID()).
		Updates(map[string]interface{}{
			"steps":        steps,
			"completed_at": o.CompletedAt(),
			"updated_at":   o.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update onboarding state", "error", result.Error, "id", o.ID())
		return fmt.Errorf("failed to update onboarding state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("onboarding state not found")
	}
	return nil
}

// GetByUser returns the user's state
func (r *OnboardingRepositoryImpl) GetByUser(ctx context.Context, userID string) (*lifecycle.Onboarding, error) {
	var model models.OnboardingStateModel
	err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lifecycle.ErrOnboardingNotFound
		}
		return nil, fmt.Errorf("failed to get onboarding state: %w", err)
	}

	steps, err := unmarshalSteps(model.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to decode onboarding steps: %w", err)
	}

	o, err := lifecycle.ReconstructOnboarding(
		model.ID,
		model.UserID,
		model.TenantKey,
		steps,
		model.CompletedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct onboarding state: %w", err)
	}
	return o, nil
}

func marshalSteps(steps []lifecycle.OnboardingStep) (datatypes.JSON, error) {
	if steps == nil {
		steps = []lifecycle.OnboardingStep{}
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalSteps(data datatypes.JSON) ([]lifecycle.OnboardingStep, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var steps []lifecycle.OnboardingStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}
