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

// DeletionRequestRepositoryImpl implements the
// retention.DeletionRequestRepository interface
type DeletionRequestRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewDeletionRequestRepository creates a new deletion request repository instance
func NewDeletionRequestRepository(gdb *gorm.DB, logger logger.Interface) retention.DeletionRequestRepository {
	return &DeletionRequestRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create persists a new deletion request and sets its ID
func (r *DeletionRequestRepositoryImpl) Create(ctx context.Context, req *retention.DeletionRequest) error {
	model := &models.DataDeletionRequestModel{
		RequestID:   req.RequestID(),
		UserID:      req.UserID(),
		TenantKey:   req.TenantKey(),
		Status:      req.Status().String(),
		RequestedAt: req.RequestedAt(),
		DueAt:       req.DueAt(),
		CompletedAt: req.CompletedAt(),
		FailReason:  req.FailReason(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("deletion request ID already exists")
		}
		r.logger.Errorw("failed to create deletion request", "error", err, "request_id", req.RequestID())
		return fmt.Errorf("failed to create deletion request: %w", err)
	}

	if err := req.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set deletion request ID: %w", err)
	}
	return nil
}

// Update persists state transitions
func (r *DeletionRequestRepositoryImpl) Update(ctx context.Context, req *retention.DeletionRequest) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.DataDeletionRequestModel{}).
		Where("id = ?", req.ID()).
		Updates(map[string]interface{}{
			"status":       req.Status().String(),
			"completed_at": req.CompletedAt(),
			"fail_reason":  req.FailReason(),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update deletion request", "error", result.Error, "id", req.ID())
		return fmt.Errorf("failed to update deletion request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("deletion request not found")
	}
	return nil
}

// GetByRequestID returns the request with the external identifier
func (r *DeletionRequestRepositoryImpl) GetByRequestID(ctx context.Context, requestID string) (*retention.DeletionRequest, error) {
	var model models.DataDeletionRequestModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("request_id = ?", requestID).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, retention.ErrDeletionNotFound
		}
		return nil, fmt.Errorf("failed to get deletion request: %w", err)
	}
	return r.toDomain(&model)
}

// GetOverdue returns requests past their SLA deadline that are not
// completed, oldest deadline first
func (r *DeletionRequestRepositoryImpl) GetOverdue(ctx context.Context, now time.Time) ([]*retention.DeletionRequest, error) {
	var rows []models.DataDeletionRequestModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("status <> ? AND due_at < ?", retention.DeletionStatusCompleted.String(), now).
		Order("due_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get overdue deletion requests: %w", err)
	}

	requests := make([]*retention.DeletionRequest, 0, len(rows))
	for i := range rows {
		req, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (r *DeletionRequestRepositoryImpl) toDomain(model *models.DataDeletionRequestModel) (*retention.DeletionRequest, error) {
	req, err := retention.ReconstructDeletionRequest(
		model.ID,
		model.RequestID,
		model.UserID,
		model.TenantKey,
		retention.DeletionStatus(model.Status),
		model.RequestedAt,
		model.DueAt,
		model.CompletedAt,
		model.FailReason,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct deletion request: %w", err)
	}
	return req, nil
}
