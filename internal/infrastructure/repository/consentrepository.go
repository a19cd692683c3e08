package repository

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/consent"
	"github.com/veyra-inc/veyra/internal/infrastructure/persistence/models"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// ConsentRepositoryImpl implements the consent.Repository interface.
// The current-key mirror column guarantees exactly one current version
// per doc type at the store level.
type ConsentRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewConsentRepository creates a new consent repository instance
func NewConsentRepository(gdb *gorm.DB, logger logger.Interface) consent.Repository {
	return &ConsentRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// SetCurrentVersion atomically demotes the existing current row for the
// doc type and promotes (or creates) the target version. Must run on
// the caller's transaction.
func (r *ConsentRepositoryImpl) SetCurrentVersion(ctx context.Context, docType consent.DocType, version string) error {
	tx := db.GetTxFromContext(ctx, r.db)
	docTypeStr := docType.String()

	result := tx.Model(&models.LegalDocVersionModel{}).
		Where("doc_type = ? AND current = ?", docTypeStr, true).
		Updates(map[string]interface{}{
			"current":     false,
			"current_key": nil,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to demote current version: %w", result.Error)
	}

	now := time.Now()
	promote := tx.Model(&models.LegalDocVersionModel{}).
		Where("doc_type = ? AND version = ?", docTypeStr, version).
		Updates(map[string]interface{}{
			"current":     true,
			"current_key": docTypeStr,
			"updated_at":  now,
		})
	if promote.Error != nil {
		return fmt.Errorf("failed to promote version: %w", promote.Error)
	}
	if promote.RowsAffected > 0 {
		return nil
	}

	model := &models.LegalDocVersionModel{
		DocType:     docTypeStr,
		Version:     version,
		Current:     true,
		CurrentKey:  &docTypeStr,
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("document version swap raced with another publisher")
		}
		r.logger.Errorw("failed to create document version", "error", err, "doc_type", docType, "version", version)
		return fmt.Errorf("failed to create document version: %w", err)
	}
	return nil
}

// GetCurrentVersions returns the current version per configured doc type
func (r *ConsentRepositoryImpl) GetCurrentVersions(ctx context.Context) (map[consent.DocType]string, error) {
	var rows []models.LegalDocVersionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("current = ?", true).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get current versions: %w", err)
	}

	current := make(map[consent.DocType]string, len(rows))
	for i := range rows {
		current[consent.DocType(rows[i].DocType)] = rows[i].Version
	}
	return current, nil
}

// GetConsent returns the user's latest accepted row for the doc type,
// or nil when none exists
func (r *ConsentRepositoryImpl) GetConsent(ctx context.Context, userID string, docType consent.DocType) (*consent.UserConsent, error) {
	var model models.UserConsentModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND doc_type = ?", userID, docType.String()).
		First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}

	c, err := consent.ReconstructUserConsent(
		model.ID,
		model.UserID,
		model.TenantKey,
		consent.DocType(model.DocType),
		model.Version,
		model.AcceptedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct consent: %w", err)
	}
	return c, nil
}

// UpsertConsent creates or mutates the single latest-accepted row for
// the (user, doc type) pair
func (r *ConsentRepositoryImpl) UpsertConsent(ctx context.Context, c *consent.UserConsent) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if c.ID() != 0 {
		result := tx.Model(&models.UserConsentModel{}).
			Where("id = ?", c.ID()).
			Updates(map[string]interface{}{
				"version":     c.Version(),
				"accepted_at": c.AcceptedAt(),
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update consent: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("consent row not found")
		}
		return nil
	}

	model := &models.UserConsentModel{
		UserID:     c.UserID(),
		TenantKey:  c.TenantKey(),
		DocType:    c.DocType().String(),
		Version:    c.Version(),
		AcceptedAt: c.AcceptedAt(),
	}
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("consent row already exists")
		}
		r.logger.Errorw("failed to create consent", "error", err, "user_id", c.UserID(), "doc_type", c.DocType())
		return fmt.Errorf("failed to create consent: %w", err)
	}
	return c.SetID(model.ID)
}

// AppendAudit appends an immutable audit row
func (r *ConsentRepositoryImpl) AppendAudit(ctx context.Context, a *consent.AuditEntry) error {
	model := &models.ConsentAuditLogModel{
		UserID:    a.UserID(),
		TenantKey: a.TenantKey(),
		DocType:   a.DocType().String(),
		Version:   a.Version(),
		IPAddress: a.Client().IPAddress,
		UserAgent: a.Client().UserAgent,
		CreatedAt: a.CreatedAt(),
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append consent audit row", "error", err, "user_id", a.UserID())
		return fmt.Errorf("failed to append consent audit row: %w", err)
	}
	return nil
}

// GetAuditTrail returns every audit row for a (user, doc type) pair,
// oldest first
func (r *ConsentRepositoryImpl) GetAuditTrail(ctx context.Context, userID string, docType consent.DocType) ([]*consent.AuditEntry, error) {
	var rows []models.ConsentAuditLogModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND doc_type = ?", userID, docType.String()).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get consent audit trail: %w", err)
	}

	entries := make([]*consent.AuditEntry, 0, len(rows))
	for i := range rows {
		entry, err := consent.ReconstructAuditEntry(
			rows[i].ID,
			rows[i].UserID,
			rows[i].TenantKey,
			consent.DocType(rows[i].DocType),
			rows[i].Version,
			consent.ClientMeta{IPAddress: rows[i].IPAddress, UserAgent: rows[i].UserAgent},
			rows[i].CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct audit row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
