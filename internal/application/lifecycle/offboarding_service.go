package lifecycle

import (
	"context"
	"fmt"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// OffboardingService is pure cancellation bookkeeping: it records why
// users leave and when the exit flow finished. Payment cancellation and
// email belong to the calling layer, never here.
type OffboardingService struct {
	offboardingRepo lifecycle.OffboardingRepository
	logger          logger.Interface
}

// NewOffboardingService creates a new offboarding service
func NewOffboardingService(offboardingRepo lifecycle.OffboardingRepository, logger logger.Interface) *OffboardingService {
	return &OffboardingService{
		offboardingRepo: offboardingRepo,
		logger:          logger,
	}
}

// Initiate opens an offboarding record. Rejects an unknown reason and
// conflicts while a previous record is still uncompleted; a user may
// offboard again after the prior record completed.
func (s *OffboardingService) Initiate(ctx context.Context, tctx tenant.Context, reason lifecycle.OffboardingReason, feedback string) (*lifecycle.Offboarding, error) {
	if !reason.IsValid() {
		s.logger.Warnw("invalid offboarding reason", "reason", reason, "user_id", tctx.UserID)
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid offboarding reason: %s", reason))
	}

	active, err := s.offboardingRepo.GetActiveByUser(ctx, tctx.UserID)
	if err != nil {
		s.logger.Errorw("failed to check active offboarding", "error", err, "user_id", tctx.UserID)
		return nil, fmt.Errorf("failed to check active offboarding: %w", err)
	}
	if active != nil {
		s.logger.Warnw("offboarding already in progress", "user_id", tctx.UserID)
		return nil, apperrors.NewConflictError("offboarding already in progress")
	}

	record, err := lifecycle.NewOffboarding(tctx.UserID, tctx.TenantKey, reason, feedback)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.offboardingRepo.Create(ctx, record); err != nil {
		s.logger.Errorw("failed to create offboarding record", "error", err, "user_id", tctx.UserID)
		return nil, fmt.Errorf("failed to create offboarding record: %w", err)
	}

	s.logger.Infow("offboarding initiated",
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"reason", reason,
	)
	return record, nil
}

// Complete stamps completion on the single active record; not-found when
// no offboarding is in progress.
func (s *OffboardingService) Complete(ctx context.Context, userID string) (*lifecycle.Offboarding, error) {
	active, err := s.offboardingRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active offboarding: %w", err)
	}
	if active == nil {
		return nil, apperrors.NewNotFoundError("no active offboarding record")
	}

	if err := active.Complete(); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}
	if err := s.offboardingRepo.Update(ctx, active); err != nil {
		s.logger.Errorw("failed to complete offboarding", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to complete offboarding: %w", err)
	}

	s.logger.Infow("offboarding completed", "user_id", userID)
	return active, nil
}

// History returns all offboarding records for the user, newest first.
func (s *OffboardingService) History(ctx context.Context, userID string) ([]*lifecycle.Offboarding, error) {
	return s.offboardingRepo.GetHistoryByUser(ctx, userID)
}
