// Package retention provides the retention sweeps, tenant archival, and
// the GDPR deletion workflow over the typed data-type registry.
package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/retention"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/db"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Service implements the data retention and deletion engine.
type Service struct {
	policyRepo   retention.PolicyRepository
	sweepRepo    retention.SweepRepository
	archiveRepo  retention.ArchiveRepository
	deletionRepo retention.DeletionRequestRepository
	purgeRepo    lifecycle.PurgeRepository
	txManager    *db.TransactionManager
	logger       logger.Interface
	slaDays      int
}

// NewService creates a new retention service
func NewService(
	policyRepo retention.PolicyRepository,
	sweepRepo retention.SweepRepository,
	archiveRepo retention.ArchiveRepository,
	deletionRepo retention.DeletionRequestRepository,
	purgeRepo lifecycle.PurgeRepository,
	txManager *db.TransactionManager,
	logger logger.Interface,
	slaDays int,
) *Service {
	return &Service{
		policyRepo:   policyRepo,
		sweepRepo:    sweepRepo,
		archiveRepo:  archiveRepo,
		deletionRepo: deletionRepo,
		purgeRepo:    purgeRepo,
		txManager:    txManager,
		logger:       logger,
		slaDays:      slaDays,
	}
}

// SetPolicy configures a retention override for one data type.
func (s *Service) SetPolicy(ctx context.Context, dataTypeName string, retentionDays int) error {
	policy, err := retention.NewPolicy(dataTypeName, retentionDays)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if err := s.policyRepo.Upsert(ctx, policy); err != nil {
		s.logger.Errorw("failed to save retention policy", "error", err, "data_type", dataTypeName)
		return fmt.Errorf("failed to save retention policy: %w", err)
	}

	s.logger.Infow("retention policy set", "data_type", dataTypeName, "retention_days", retentionDays)
	return nil
}

// effectiveRetention resolves the window for a data type: the policy
// override when one exists, the hardcoded default otherwise.
func (s *Service) effectiveRetention(ctx context.Context, dt retention.DataType) (time.Duration, error) {
	policy, err := s.policyRepo.GetByDataType(ctx, dt.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to load retention policy: %w", err)
	}
	if policy != nil {
		return policy.Retention(), nil
	}
	return dt.DefaultRetention, nil
}

// purgeClass deletes every row older than its data type's window for one
// registry class. Idempotent: a back-to-back second run deletes zero.
func (s *Service) purgeClass(ctx context.Context, class retention.Class) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, dt := range retention.RegistryByClass(class) {
		window, err := s.effectiveRetention(ctx, dt)
		if err != nil {
			return counts, err
		}
		cutoff := time.Now().Add(-window)

		deleted, err := s.sweepRepo.DeleteOlderThan(ctx, dt, cutoff)
		if err != nil {
			s.logger.Errorw("retention sweep failed for data type", "error", err, "data_type", dt.Name)
			return counts, fmt.Errorf("failed to purge %s: %w", dt.Name, err)
		}
		counts[dt.Name] = deleted
	}

	s.logger.Infow("retention sweep finished", "class", class, "deleted", counts)
	return counts, nil
}

// PurgeExpiredLogs sweeps the short-window operational data types.
func (s *Service) PurgeExpiredLogs(ctx context.Context) (map[string]int64, error) {
	return s.purgeClass(ctx, retention.ClassOperational)
}

// PurgeComplianceData sweeps the long-window compliance data types.
func (s *Service) PurgeComplianceData(ctx context.Context) (map[string]int64, error) {
	return s.purgeClass(ctx, retention.ClassCompliance)
}

// ArchiveTenantData snapshots every tenant-keyed row of the named data
// types into cold storage. User-keyed types are skipped and reported as
// zero rather than erroring. Returns per-type archived-row counts.
func (s *Service) ArchiveTenantData(ctx context.Context, tenantKey string, dataTypeNames []string) (map[string]int64, error) {
	if tenantKey == "" {
		return nil, apperrors.NewValidationError("tenant key is required")
	}

	types := make([]retention.DataType, 0, len(dataTypeNames))
	for _, name := range dataTypeNames {
		dt, ok := retention.Lookup(name)
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown data type: %s", name))
		}
		types = append(types, dt)
	}

	counts := make(map[string]int64)
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, dt := range types {
			if !dt.IsTenantScoped() {
				counts[dt.Name] = 0
				continue
			}

			rows, err := s.sweepRepo.SnapshotOlderThan(txCtx, dt, tenantKey, time.Now())
			if err != nil {
				return fmt.Errorf("failed to snapshot %s: %w", dt.Name, err)
			}
			for originalID, payload := range rows {
				record, err := retention.NewArchivedRecord(tenantKey, dt.Name, originalID, payload)
				if err != nil {
					return fmt.Errorf("failed to build archive record: %w", err)
				}
				if err := s.archiveRepo.Create(txCtx, record); err != nil {
					return fmt.Errorf("failed to archive %s row: %w", dt.Name, err)
				}
			}
			counts[dt.Name] = int64(len(rows))
		}
		return nil
	})
	if err != nil {
		s.logger.Errorw("tenant archival failed", "error", err, "tenant_key", tenantKey)
		return nil, err
	}

	s.logger.Infow("tenant data archived", "tenant_key", tenantKey, "archived", counts)
	return counts, nil
}

// RequestDeletion opens a GDPR erasure request with the fixed SLA
// deadline.
func (s *Service) RequestDeletion(ctx context.Context, tctx tenant.Context, requestID string) (*retention.DeletionRequest, error) {
	request, err := retention.NewDeletionRequest(requestID, tctx.UserID, tctx.TenantKey, s.slaDays)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.deletionRepo.Create(ctx, request); err != nil {
		if apperrors.IsConflictError(err) {
			return nil, apperrors.NewConflictError("deletion request already exists")
		}
		s.logger.Errorw("failed to create deletion request", "error", err, "request_id", requestID)
		return nil, fmt.Errorf("failed to create deletion request: %w", err)
	}

	s.logger.Infow("deletion request opened",
		"request_id", requestID,
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"due_at", request.DueAt(),
	)
	return request, nil
}

// CompleteDeletion runs the archive-then-purge workflow for one erasure
// request: snapshot the tenant-keyed data types to cold storage, then
// hard-delete the user's rows, then mark the request completed, all in
// one transaction. Completing an already-completed request fails rather
// than silently re-running. On failure the request is marked failed with
// the reason.
func (s *Service) CompleteDeletion(ctx context.Context, requestID string) (map[string]int64, error) {
	request, err := s.deletionRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, retention.ErrDeletionNotFound) || apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError("deletion request not found")
		}
		return nil, fmt.Errorf("failed to load deletion request: %w", err)
	}

	if request.Status() == retention.DeletionStatusCompleted {
		return nil, apperrors.NewConflictError("deletion request already completed")
	}
	if request.Status() == retention.DeletionStatusPending {
		if err := request.Start(); err != nil {
			return nil, apperrors.NewConflictError(err.Error())
		}
		if err := s.deletionRepo.Update(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to start deletion request: %w", err)
		}
	}

	var names []string
	for _, dt := range retention.Registry() {
		if dt.IsTenantScoped() && dt.Name != "ai_cost_logs" {
			names = append(names, dt.Name)
		}
	}

	var counts map[string]int64
	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.ArchiveTenantData(txCtx, request.TenantKey(), names); err != nil {
			return err
		}

		counts, err = s.purgeRepo.PurgeUserData(txCtx, request.UserID(), request.TenantKey())
		if err != nil {
			return fmt.Errorf("failed to purge user data: %w", err)
		}

		if err := request.Complete(); err != nil {
			return apperrors.NewConflictError(err.Error())
		}
		return s.deletionRepo.Update(txCtx, request)
	})
	if err != nil {
		s.logger.Errorw("deletion request failed", "error", err, "request_id", requestID)
		if failErr := request.Fail(err.Error()); failErr == nil {
			if updErr := s.deletionRepo.Update(ctx, request); updErr != nil {
				s.logger.Errorw("failed to record deletion failure", "error", updErr, "request_id", requestID)
			}
		}
		return nil, err
	}

	s.logger.Infow("deletion request completed", "request_id", requestID, "deleted", counts)
	return counts, nil
}

// GetOverdueDeletions returns uncompleted requests past their SLA
// deadline. Pure read for alerting.
func (s *Service) GetOverdueDeletions(ctx context.Context) ([]*retention.DeletionRequest, error) {
	return s.deletionRepo.GetOverdue(ctx, time.Now())
}
