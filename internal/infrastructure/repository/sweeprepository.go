package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/retention"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// SweepRepositoryImpl implements the retention.SweepRepository
// interface. Table and column names come exclusively from the registered
// data type, never from caller input.
type SweepRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewSweepRepository creates a new sweep repository instance
func NewSweepRepository(gdb *gorm.DB, logger logger.Interface) retention.SweepRepository {
	return &SweepRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// DeleteOlderThan hard-deletes rows of dt whose date column is before
// cutoff and returns the number removed
func (r *SweepRepositoryImpl) DeleteOlderThan(ctx context.Context, dt retention.DataType, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE %s < ?", dt.Table, dt.DateColumn), cutoff)
	if result.Error != nil {
		r.logger.Errorw("failed to sweep expired rows", "error", result.Error, "data_type", dt.Name)
		return 0, fmt.Errorf("failed to sweep %s: %w", dt.Name, result.Error)
	}
	return result.RowsAffected, nil
}

// SnapshotOlderThan reads rows of dt for one tenant older than cutoff as
// generic documents, keyed by original row ID
func (r *SweepRepositoryImpl) SnapshotOlderThan(ctx context.Context, dt retention.DataType, tenantKey string, cutoff time.Time) (map[uint]map[string]any, error) {
	if !dt.IsTenantScoped() {
		return nil, fmt.Errorf("%w: %s", retention.ErrNotArchivable, dt.Name)
	}

	var rows []map[string]any
	err := db.GetTxFromContext(ctx, r.db).
		Table(dt.Table).
		Where(dt.TenantColumn+" = ? AND "+dt.DateColumn+" < ?", tenantKey, cutoff).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot %s: %w", dt.Name, err)
	}

	snapshot := make(map[uint]map[string]any, len(rows))
	for _, row := range rows {
		id, err := rowID(row)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", dt.Name, err)
		}
		snapshot[id] = row
	}
	return snapshot, nil
}

// DeleteByIDs hard-deletes specific rows of dt and returns the number
// removed
func (r *SweepRepositoryImpl) DeleteByIDs(ctx context.Context, dt retention.DataType, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := db.GetTxFromContext(ctx, r.db).
		Table(dt.Table).
		Where("id IN ?", ids).
		Delete(nil)
	if result.Error != nil {
		r.logger.Errorw("failed to delete archived rows", "error", result.Error, "data_type", dt.Name)
		return 0, fmt.Errorf("failed to delete rows from %s: %w", dt.Name, result.Error)
	}
	return result.RowsAffected, nil
}

// rowID extracts the primary key from a generic row scan. The MySQL
// driver hands back unsigned columns under several integer types.
func rowID(row map[string]any) (uint, error) {
	raw, ok := row["id"]
	if !ok {
		return 0, fmt.Errorf("row has no id column")
	}
	switch v := raw.(type) {
	case uint:
		return v, nil
	case uint32:
		return uint(v), nil
	case uint64:
		return uint(v), nil
	case int:
		return uint(v), nil
	case int32:
		return uint(v), nil
	case int64:
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unexpected id column type %T", raw)
	}
}
