package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/veyra-inc/veyra/internal/application/notification"
	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/db"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// ClosureService runs the account closure state machine: initiation
// (tenant disable + entitlement revocation + closure row, one
// transaction), cancellation during the grace period, and the purge.
type ClosureService struct {
	closureRepo     lifecycle.ClosureRepository
	purgeRepo       lifecycle.PurgeRepository
	tenantRepo      tenant.Repository
	entitlementRepo entitlement.Repository
	txManager       *db.TransactionManager
	notifier        notification.Notifier
	logger          logger.Interface
	graceDays       int
}

// NewClosureService creates a new closure service
func NewClosureService(
	closureRepo lifecycle.ClosureRepository,
	purgeRepo lifecycle.PurgeRepository,
	tenantRepo tenant.Repository,
	entitlementRepo entitlement.Repository,
	txManager *db.TransactionManager,
	notifier notification.Notifier,
	logger logger.Interface,
	graceDays int,
) *ClosureService {
	return &ClosureService{
		closureRepo:     closureRepo,
		purgeRepo:       purgeRepo,
		tenantRepo:      tenantRepo,
		entitlementRepo: entitlementRepo,
		txManager:       txManager,
		notifier:        notifier,
		logger:          logger,
		graceDays:       graceDays,
	}
}

// InitiateClosure opens the grace period. In one transaction it
// deactivates the tenant, soft-revokes every entitlement, and creates
// the pending_purge row; a partial application of those three is a
// consistency bug. Conflicts when a closure is already pending.
func (s *ClosureService) InitiateClosure(ctx context.Context, tctx tenant.Context) (*lifecycle.Closure, error) {
	pending, err := s.closureRepo.GetPendingByUser(ctx, tctx.UserID)
	if err != nil {
		s.logger.Errorw("failed to check pending closure", "error", err, "user_id", tctx.UserID)
		return nil, fmt.Errorf("failed to check pending closure: %w", err)
	}
	if pending != nil {
		s.logger.Warnw("closure already pending", "user_id", tctx.UserID, "purge_at", pending.PurgeAt())
		return nil, apperrors.NewConflictError("account closure already pending")
	}

	closure, err := lifecycle.NewClosure(tctx.UserID, tctx.TenantKey, s.graceDays)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		t, err := s.tenantRepo.GetByKey(txCtx, tctx.TenantKey)
		if err != nil {
			return fmt.Errorf("failed to load tenant: %w", err)
		}
		t.Deactivate()
		if err := s.tenantRepo.Update(txCtx, t); err != nil {
			return fmt.Errorf("failed to deactivate tenant: %w", err)
		}

		if _, err := s.entitlementRepo.RevokeAllByUser(txCtx, tctx.UserID, tctx.TenantKey); err != nil {
			return fmt.Errorf("failed to revoke entitlements: %w", err)
		}

		if err := s.closureRepo.Create(txCtx, closure); err != nil {
			return fmt.Errorf("failed to create closure record: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsConflictError(err) {
			return nil, apperrors.NewConflictError("account closure already pending")
		}
		s.logger.Errorw("failed to initiate closure", "error", err, "user_id", tctx.UserID)
		return nil, err
	}

	s.logger.Infow("account closure initiated",
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"purge_at", closure.PurgeAt(),
	)

	// Best effort; the closure is already committed.
	if err := s.notifier.SendClosureNotice(tctx.UserID, closure.PurgeAt()); err != nil {
		s.logger.Warnw("closure notice failed", "error", err, "user_id", tctx.UserID)
	}

	return closure, nil
}

// CancelClosure reactivates a pending closure and its tenant in one
// transaction. Returns false, not an error, when nothing is pending:
// "already resolved" is a no-op, not a failure.
func (s *ClosureService) CancelClosure(ctx context.Context, tctx tenant.Context) (bool, error) {
	pending, err := s.closureRepo.GetPendingByUser(ctx, tctx.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to load pending closure: %w", err)
	}
	if pending == nil {
		return false, nil
	}

	if err := pending.Reactivate(); err != nil {
		return false, apperrors.NewConflictError(err.Error())
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.closureRepo.Update(txCtx, pending); err != nil {
			return fmt.Errorf("failed to update closure record: %w", err)
		}
		t, err := s.tenantRepo.GetByKey(txCtx, pending.TenantKey())
		if err != nil {
			return fmt.Errorf("failed to load tenant: %w", err)
		}
		t.Reactivate()
		if err := s.tenantRepo.Update(txCtx, t); err != nil {
			return fmt.Errorf("failed to reactivate tenant: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Errorw("failed to cancel closure", "error", err, "user_id", tctx.UserID)
		return false, err
	}

	s.logger.Infow("account closure cancelled", "user_id", tctx.UserID, "tenant_key", pending.TenantKey())
	return true, nil
}

// GetPendingPurges returns every pending closure whose grace deadline
// has elapsed. Pure read for the scheduler.
func (s *ClosureService) GetPendingPurges(ctx context.Context) ([]*lifecycle.Closure, error) {
	return s.closureRepo.GetPendingPurges(ctx)
}

// ExecutePurge hard-deletes the user's rows from every per-user table
// and the tenant's usage counters, keeps the tenant deactivated, and
// marks the closure purged, all in one transaction. The AI cost log is
// never touched. Safe to run twice: a rerun against a purged record
// deletes zero further rows and does not error. A missing closure record
// fails loudly; the tenant scope for counter deletion comes only from
// the record itself.
func (s *ClosureService) ExecutePurge(ctx context.Context, userID string) (map[string]int64, error) {
	closure, err := s.closureRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrClosureNotFound) || apperrors.IsNotFoundError(err) {
			s.logger.Errorw("purge requested without closure record", "user_id", userID)
			return nil, apperrors.NewNotFoundError("no closure record for user; refusing to purge")
		}
		return nil, fmt.Errorf("failed to load closure record: %w", err)
	}
	if closure.Status() == lifecycle.ClosureStatusReactivated {
		return nil, apperrors.NewConflictError("closure was reactivated; nothing to purge")
	}

	var counts map[string]int64
	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		counts, err = s.purgeRepo.PurgeUserData(txCtx, userID, closure.TenantKey())
		if err != nil {
			return fmt.Errorf("failed to purge user data: %w", err)
		}

		t, err := s.tenantRepo.GetByKey(txCtx, closure.TenantKey())
		if err != nil {
			return fmt.Errorf("failed to load tenant: %w", err)
		}
		t.Deactivate()
		if err := s.tenantRepo.Update(txCtx, t); err != nil {
			return fmt.Errorf("failed to keep tenant deactivated: %w", err)
		}

		if closure.IsPending() {
			if err := closure.MarkPurged(); err != nil {
				return fmt.Errorf("failed to mark closure purged: %w", err)
			}
			if err := s.closureRepo.Update(txCtx, closure); err != nil {
				return fmt.Errorf("failed to update closure record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Errorw("purge failed", "error", err, "user_id", userID)
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	s.logger.Infow("account purged",
		"user_id", userID,
		"tenant_key", closure.TenantKey(),
		"rows_deleted", total,
		"per_table", counts,
	)
	return counts, nil
}

// RunPurgeSweep purges every due closure, continuing past individual
// failures. Returns the number purged.
func (s *ClosureService) RunPurgeSweep(ctx context.Context) (int, error) {
	due, err := s.closureRepo.GetPendingPurges(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list due purges: %w", err)
	}

	purged := 0
	for _, closure := range due {
		if _, err := s.ExecutePurge(ctx, closure.UserID()); err != nil {
			s.logger.Errorw("purge sweep entry failed", "error", err, "user_id", closure.UserID())
			continue
		}
		purged++
	}

	s.logger.Infow("purge sweep finished", "due", len(due), "purged", purged)
	return purged, nil
}
