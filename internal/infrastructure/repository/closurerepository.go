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

// ClosureRepositoryImpl implements the lifecycle.ClosureRepository
// interface
type ClosureRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewClosureRepository creates a new closure repository instance
func NewClosureRepository(gdb *gorm.DB, logger logger.Interface) lifecycle.ClosureRepository {
	return &ClosureRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create creates a closure record
func (r *ClosureRepositoryImpl) Create(ctx context.Context, c *lifecycle.Closure) error {
	model := &models.AccountClosureModel{
		UserID:      c.UserID(),
		TenantKey:   c.TenantKey(),
		Status:      c.Status().String(),
		PendingKey:  pendingKeyFor(c),
		RequestedAt: c.RequestedAt(),
		PurgeAt:     c.PurgeAt(),
		PurgedAt:    c.PurgedAt(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("account closure already pending")
		}
		r.logger.Errorw("failed to create closure record", "error", err, "user_id", c.UserID())
		return fmt.Errorf("failed to create closure record: %w", err)
	}

	if err := c.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set closure ID: %w", err)
	}
	return nil
}

// Update persists a status transition
func (r *ClosureRepositoryImpl) Update(ctx context.Context, c *lifecycle.Closure) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.AccountClosureModel{}).
		Where("id = ?", c.ID()).
		Updates(map[string]interface{}{
			"status":      c.Status().String(),
			"pending_key": pendingKeyFor(c),
			"purged_at":   c.PurgedAt(),
			"updated_at":  c.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update closure record", "error", result.Error, "id", c.ID())
		return fmt.Errorf("failed to update closure record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("closure record not found")
	}
	return nil
}

// GetPendingByUser returns the user's pending_purge record, or nil
func (r *ClosureRepositoryImpl) GetPendingByUser(ctx context.Context, userID string) (*lifecycle.Closure, error) {
	var model models.AccountClosureModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, lifecycle.ClosureStatusPendingPurge.String()).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending closure: %w", err)
	}
	return r.toDomain(&model)
}

// GetLatestByUser returns the user's most recent closure record
func (r *ClosureRepositoryImpl) GetLatestByUser(ctx context.Context, userID string) (*lifecycle.Closure, error) {
	var model models.AccountClosureModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id DESC").
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lifecycle.ErrClosureNotFound
		}
		return nil, fmt.Errorf("failed to get closure record: %w", err)
	}
	return r.toDomain(&model)
}

// GetPendingPurges returns every pending_purge record whose deadline has
// elapsed
func (r *ClosureRepositoryImpl) GetPendingPurges(ctx context.Context) ([]*lifecycle.Closure, error) {
	var rows []models.AccountClosureModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND purge_at <= ?", lifecycle.ClosureStatusPendingPurge.String(), time.Now()).
		Order("purge_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending purges: %w", err)
	}

	closures := make([]*lifecycle.Closure, 0, len(rows))
	for i := range rows {
		c, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		closures = append(closures, c)
	}
	return closures, nil
}

// pendingKeyFor mirrors the user ID while the closure is pending so the
// unique index enforces one pending record per user.
func pendingKeyFor(c *lifecycle.Closure) *string {
	if c.IsPending() {
		userID := c.UserID()
		return &userID
	}
	return nil
}

func (r *ClosureRepositoryImpl) toDomain(model *models.AccountClosureModel) (*lifecycle.Closure, error) {
	c, err := lifecycle.ReconstructClosure(
		model.ID,
		model.UserID,
		model.TenantKey,
		lifecycle.ClosureStatus(model.Status),
		model.RequestedAt,
		model.PurgeAt,
		model.PurgedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct closure record: %w", err)
	}
	return c, nil
}
