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

// ActivationRepositoryImpl implements the lifecycle.ActivationRepository
// interface
type ActivationRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewActivationRepository creates a new activation repository instance
func NewActivationRepository(gdb *gorm.DB, logger logger.Interface) lifecycle.ActivationRepository {
	return &ActivationRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// GetByUserAndEvent returns the existing row for the pair, or nil
func (r *ActivationRepositoryImpl) GetByUserAndEvent(ctx context.Context, userID, eventName string) (*lifecycle.ActivationEvent, error) {
	var model models.ActivationEventModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND event_name = ?", userID, eventName).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get activation event: %w", err)
	}
	return r.toDomain(&model)
}

// Create appends an activation event; the unique (user, event) index
// enforces first-write-wins
func (r *ActivationRepositoryImpl) Create(ctx context.Context, e *lifecycle.ActivationEvent) error {
	metadata, err := marshalJSONMap(e.Metadata())
	if err != nil {
		return fmt.Errorf("failed to encode activation metadata: %w", err)
	}

	model := &models.ActivationEventModel{
		UserID:    e.UserID(),
		TenantKey: e.TenantKey(),
		EventName: e.EventName(),
		Metadata:  metadata,
		CreatedAt: e.CreatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("activation event already recorded")
		}
		r.logger.Errorw("failed to create activation event", "error", err, "user_id", e.UserID(), "event", e.EventName())
		return fmt.Errorf("failed to create activation event: %w", err)
	}

	if err := e.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set activation event ID: %w", err)
	}
	return nil
}

// IsActivated reports whether any activation row exists for the user
func (r *ActivationRepositoryImpl) IsActivated(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ActivationEventModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check activation: %w", err)
	}
	return count > 0, nil
}

func (r *ActivationRepositoryImpl) toDomain(model *models.ActivationEventModel) (*lifecycle.ActivationEvent, error) {
	metadata, err := unmarshalJSONMap(model.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to decode activation metadata: %w", err)
	}

	e, err := lifecycle.ReconstructActivationEvent(
		model.ID,
		model.UserID,
		model.TenantKey,
		model.EventName,
		metadata,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct activation event: %w", err)
	}
	return e, nil
}

// marshalJSONMap encodes a metadata map for a JSON column; nil maps
// become NULL, not "null".
func marshalJSONMap(m map[string]any) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// unmarshalJSONMap decodes a JSON column into a metadata map.
func unmarshalJSONMap(data datatypes.JSON) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
