package repository

import (
	"context"
	goerrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/abuse"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// FraudEventRepositoryImpl implements the abuse.FraudEventRepository
// interface
type FraudEventRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewFraudEventRepository creates a new fraud event repository instance
func NewFraudEventRepository(gdb *gorm.DB, logger logger.Interface) abuse.FraudEventRepository {
	return &FraudEventRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create appends a fraud event
func (r *FraudEventRepositoryImpl) Create(ctx context.Context, e *abuse.FraudEvent) error {
	detail, err := marshalJSONMap(e.Detail())
	if err != nil {
		return fmt.Errorf("failed to encode fraud event detail: %w", err)
	}

	model := &models.FraudEventModel{
		UserID:    e.UserID(),
		TenantKey: e.TenantKey(),
		EventType: e.EventType().String(),
		Severity:  e.Severity().String(),
		Detail:    detail,
		Resolved:  e.IsResolved(),
		CreatedAt: e.CreatedAt(),
		UpdatedAt: e.UpdatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create fraud event", "error", err, "user_id", e.UserID())
		return fmt.Errorf("failed to create fraud event: %w", err)
	}

	if err := e.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set fraud event ID: %w", err)
	}
	return nil
}

// Update persists resolution
func (r *FraudEventRepositoryImpl) Update(ctx context.Context, e *abuse.FraudEvent) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.FraudEventModel{}).
		Where("id = ?", e.ID()).
		Updates(map[string]interface{}{
			"resolved":   e.IsResolved(),
			"updated_at": e.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update fraud event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("fraud event not found")
	}
	return nil
}

// GetByID returns the event with the given row ID
func (r *FraudEventRepositoryImpl) GetByID(ctx context.Context, id uint) (*abuse.FraudEvent, error) {
	var model models.FraudEventModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("fraud event not found")
		}
		return nil, fmt.Errorf("failed to get fraud event: %w", err)
	}
	return r.toDomain(&model)
}

// GetUnresolved returns unresolved events, newest first
func (r *FraudEventRepositoryImpl) GetUnresolved(ctx context.Context, limit int) ([]*abuse.FraudEvent, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("resolved = ?", false).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.FraudEventModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get unresolved fraud events: %w", err)
	}
	return r.toDomainSlice(rows)
}

// GetByUser returns all events for a user, newest first
func (r *FraudEventRepositoryImpl) GetByUser(ctx context.Context, userID string) ([]*abuse.FraudEvent, error) {
	var rows []models.FraudEventModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get fraud events: %w", err)
	}
	return r.toDomainSlice(rows)
}

func (r *FraudEventRepositoryImpl) toDomainSlice(rows []models.FraudEventModel) ([]*abuse.FraudEvent, error) {
	events := make([]*abuse.FraudEvent, 0, len(rows))
	for i := range rows {
		e, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *FraudEventRepositoryImpl) toDomain(model *models.FraudEventModel) (*abuse.FraudEvent, error) {
	detail, err := unmarshalJSONMap(model.Detail)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fraud event detail: %w", err)
	}

	e, err := abuse.ReconstructFraudEvent(
		model.ID,
		model.UserID,
		model.TenantKey,
		abuse.EventType(model.EventType),
		abuse.Severity(model.Severity),
		detail,
		model.Resolved,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct fraud event: %w", err)
	}
	return e, nil
}
