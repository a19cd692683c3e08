package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/usage"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// CostLogRepositoryImpl implements the usage.CostLogRepository interface
type CostLogRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewCostLogRepository creates a new cost log repository instance
func NewCostLogRepository(gdb *gorm.DB, logger logger.Interface) usage.CostLogRepository {
	return &CostLogRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Append appends a cost log row
func (r *CostLogRepositoryImpl) Append(ctx context.Context, entry *usage.CostLogEntry) error {
	model := &models.AICostLogModel{
		UserID:     entry.UserID(),
		TenantKey:  entry.TenantKey(),
		Model:      entry.Model(),
		TokensUsed: entry.TokensUsed(),
		CostCents:  entry.CostCents(),
		CreatedAt:  entry.CreatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append cost log row", "error", err, "user_id", entry.UserID())
		return fmt.Errorf("failed to append cost log row: %w", err)
	}

	if err := entry.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set cost log ID: %w", err)
	}
	return nil
}

// CountByUserSince counts rows for a user created after the cutoff
func (r *CostLogRepositoryImpl) CountByUserSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.AICostLogModel{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cost log rows: %w", err)
	}
	return count, nil
}

// GetByUser returns all cost rows for a user, oldest first
func (r *CostLogRepositoryImpl) GetByUser(ctx context.Context, userID string) ([]*usage.CostLogEntry, error) {
	var rows []models.AICostLogModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get cost log rows: %w", err)
	}

	entries := make([]*usage.CostLogEntry, 0, len(rows))
	for i := range rows {
		entry, err := usage.ReconstructCostLogEntry(
			rows[i].ID,
			rows[i].UserID,
			rows[i].TenantKey,
			rows[i].Model,
			rows[i].TokensUsed,
			rows[i].CostCents,
			rows[i].CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct cost log row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SumCostCentsByTenant sums the cost of a tenant's calls in a window
func (r *CostLogRepositoryImpl) SumCostCentsByTenant(ctx context.Context, tenantKey string, from, to time.Time) (int64, error) {
	var total *int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.AICostLogModel{}).
		Select("SUM(cost_cents)").
		Where("tenant_key = ? AND created_at >= ? AND created_at < ?", tenantKey, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum tenant cost: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
