package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/retention"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// ArchiveRepositoryImpl implements the retention.ArchiveRepository
// interface
type ArchiveRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewArchiveRepository creates a new archive repository instance
func NewArchiveRepository(gdb *gorm.DB, logger logger.Interface) retention.ArchiveRepository {
	return &ArchiveRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create appends one archived record
func (r *ArchiveRepositoryImpl) Create(ctx context.Context, a *retention.ArchivedRecord) error {
	payload, err := marshalJSONMap(a.Payload())
	if err != nil {
		return fmt.Errorf("failed to encode archive payload: %w", err)
	}

	model := &models.ArchivedRecordModel{
		TenantKey:    a.TenantKey(),
		DataTypeName: a.DataTypeName(),
		OriginalID:   a.OriginalID(),
		Payload:      payload,
		ArchivedAt:   a.ArchivedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create archived record", "error", err, "tenant_key", a.TenantKey(), "data_type", a.DataTypeName())
		return fmt.Errorf("failed to create archived record: %w", err)
	}
	return nil
}

// GetByTenant returns archived records for a tenant, newest first
func (r *ArchiveRepositoryImpl) GetByTenant(ctx context.Context, tenantKey string, limit int) ([]*retention.ArchivedRecord, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("tenant_key = ?", tenantKey).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.ArchivedRecordModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get archived records: %w", err)
	}

	records := make([]*retention.ArchivedRecord, 0, len(rows))
	for i := range rows {
		payload, err := unmarshalJSONMap(rows[i].Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode archive payload: %w", err)
		}
		rec, err := retention.ReconstructArchivedRecord(
			rows[i].ID,
			rows[i].TenantKey,
			rows[i].DataTypeName,
			rows[i].OriginalID,
			payload,
			rows[i].ArchivedAt,
			rows[i].CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct archived record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
