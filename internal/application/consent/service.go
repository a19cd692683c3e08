// Package consent provides the consent gate: legal document versioning,
// consent recording with an immutable audit trail, and the staleness
// check that backs the legal-hold enforcement middleware.
package consent

import (
	"context"
	"fmt"

	"github.com/veyra-inc/veyra/internal/domain/consent"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/db"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Service implements the consent gate contract.
type Service struct {
	consentRepo consent.Repository
	txManager   *db.TransactionManager
	logger      logger.Interface
}

// NewService creates a new consent service
func NewService(consentRepo consent.Repository, txManager *db.TransactionManager, logger logger.Interface) *Service {
	return &Service{
		consentRepo: consentRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// SetCurrentVersion publishes a document version: one atomic swap that
// demotes the previous current row and promotes (or creates) the target.
// Every user who consented to the old version goes stale at this moment.
func (s *Service) SetCurrentVersion(ctx context.Context, docType consent.DocType, version string) error {
	if !docType.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid document type: %s", docType))
	}
	if version == "" {
		return apperrors.NewValidationError("version is required")
	}

	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.consentRepo.SetCurrentVersion(txCtx, docType, version)
	})
	if err != nil {
		s.logger.Errorw("failed to publish document version", "error", err, "doc_type", docType, "version", version)
		return fmt.Errorf("failed to publish document version: %w", err)
	}

	s.logger.Infow("document version published", "doc_type", docType, "version", version)
	return nil
}

// RecordConsent upserts the user's latest-accepted row and always
// appends an audit row, re-acceptance of the same version included:
// every consent event is evidence. Both writes share one transaction.
func (s *Service) RecordConsent(ctx context.Context, tctx tenant.Context, docType consent.DocType, version string, client consent.ClientMeta) error {
	if !docType.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid document type: %s", docType))
	}
	if version == "" {
		return apperrors.NewValidationError("version is required")
	}

	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.consentRepo.GetConsent(txCtx, tctx.UserID, docType)
		if err != nil {
			return fmt.Errorf("failed to load consent: %w", err)
		}

		if existing == nil {
			existing, err = consent.NewUserConsent(tctx.UserID, tctx.TenantKey, docType, version)
			if err != nil {
				return apperrors.NewValidationError(err.Error())
			}
		} else if err := existing.Accept(version); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := s.consentRepo.UpsertConsent(txCtx, existing); err != nil {
			return fmt.Errorf("failed to upsert consent: %w", err)
		}

		audit, err := consent.NewAuditEntry(tctx.UserID, tctx.TenantKey, docType, version, client)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := s.consentRepo.AppendAudit(txCtx, audit); err != nil {
			return fmt.Errorf("failed to append consent audit row: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.logger.Errorw("failed to record consent", "error", err, "user_id", tctx.UserID, "doc_type", docType)
		return err
	}

	s.logger.Infow("consent recorded",
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"doc_type", docType,
		"version", version,
	)
	return nil
}

// RequiresReacceptance reports whether the user must (re-)accept any
// configured document. A deployment with no versions configured at all
// never blocks anyone.
func (s *Service) RequiresReacceptance(ctx context.Context, userID string) (bool, error) {
	current, err := s.consentRepo.GetCurrentVersions(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load current versions: %w", err)
	}
	if len(current) == 0 {
		return false, nil
	}

	for docType, version := range current {
		accepted, err := s.consentRepo.GetConsent(ctx, userID, docType)
		if err != nil {
			return false, fmt.Errorf("failed to load consent: %w", err)
		}
		if accepted == nil || accepted.Version() != version {
			return true, nil
		}
	}
	return false, nil
}

// GetAuditTrail returns the user's consent history for a doc type,
// oldest first.
func (s *Service) GetAuditTrail(ctx context.Context, userID string, docType consent.DocType) ([]*consent.AuditEntry, error) {
	if !docType.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid document type: %s", docType))
	}
	return s.consentRepo.GetAuditTrail(ctx, userID, docType)
}
