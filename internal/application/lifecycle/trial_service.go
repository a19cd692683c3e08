// Package lifecycle provides the application services for the per-user
// lifecycle state machines: trial, activation, onboarding, offboarding,
// and account closure with grace-period purge.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veyra-inc/veyra/internal/application/notification"
	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/db"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// TrialService manages the one-trial-per-user state machine. Trial
// entitlements are granted and revoked together with the trial's own
// row so a crash never leaves a trial without its grants.
type TrialService struct {
	trialRepo       lifecycle.TrialRepository
	entitlementRepo entitlement.Repository
	txManager       *db.TransactionManager
	notifier        notification.Notifier
	logger          logger.Interface
	trialDays       int
}

// NewTrialService creates a new trial service
func NewTrialService(
	trialRepo lifecycle.TrialRepository,
	entitlementRepo entitlement.Repository,
	txManager *db.TransactionManager,
	notifier notification.Notifier,
	logger logger.Interface,
	trialDays int,
) *TrialService {
	return &TrialService{
		trialRepo:       trialRepo,
		entitlementRepo: entitlementRepo,
		txManager:       txManager,
		notifier:        notifier,
		logger:          logger,
		trialDays:       trialDays,
	}
}

// StartTrial starts the user's trial and grants every feature from the
// trial source in one transaction. There is no renewal path: a user who
// ever had a trial, in any state, gets a conflict.
func (s *TrialService) StartTrial(ctx context.Context, tctx tenant.Context) (*lifecycle.Trial, error) {
	existing, err := s.trialRepo.GetByUser(ctx, tctx.UserID)
	if err != nil && !errors.Is(err, lifecycle.ErrTrialNotFound) && !apperrors.IsNotFoundError(err) {
		s.logger.Errorw("failed to check existing trial", "error", err, "user_id", tctx.UserID)
		return nil, fmt.Errorf("failed to check existing trial: %w", err)
	}
	if existing != nil {
		s.logger.Warnw("trial already exists", "user_id", tctx.UserID, "status", existing.Status())
		return nil, apperrors.NewConflictError("trial already exists for this user")
	}

	trial, err := lifecycle.NewTrial(tctx.UserID, tctx.TenantKey, s.trialDays)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.trialRepo.Create(txCtx, trial); err != nil {
			return fmt.Errorf("failed to create trial: %w", err)
		}
		for _, feature := range entitlement.AllFeatures() {
			grant, err := entitlement.NewEntitlement(tctx.UserID, tctx.TenantKey, feature, entitlement.SourceTypeTrial)
			if err != nil {
				return fmt.Errorf("failed to build trial grant: %w", err)
			}
			if err := s.entitlementRepo.Create(txCtx, grant); err != nil {
				return fmt.Errorf("failed to grant %s: %w", feature, err)
			}
		}
		return nil
	})
	if err != nil {
		if apperrors.IsConflictError(err) {
			return nil, apperrors.NewConflictError("trial already exists for this user")
		}
		s.logger.Errorw("failed to start trial", "error", err, "user_id", tctx.UserID)
		return nil, err
	}

	s.logger.Infow("trial started",
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"end_at", trial.EndAt(),
	)
	return trial, nil
}

// IsTrialActive reports whether the user has a live trial: the status
// must be active AND the end date must still be in the future. A trial
// past its end date reads as inactive even before the expiry transition
// lands.
func (s *TrialService) IsTrialActive(ctx context.Context, userID string) (bool, error) {
	trial, err := s.trialRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrTrialNotFound) || apperrors.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load trial: %w", err)
	}
	return trial.IsActive(), nil
}

// ConvertTrial resolves the trial as converted to a paid subscription.
func (s *TrialService) ConvertTrial(ctx context.Context, userID string) error {
	return s.resolve(ctx, userID, (*lifecycle.Trial).Convert, "converted")
}

// ExpireTrial resolves the trial as expired and soft-revokes its
// trial-sourced grants.
func (s *TrialService) ExpireTrial(ctx context.Context, userID string) error {
	trial, err := s.getTrial(ctx, userID)
	if err != nil {
		return err
	}
	if err := trial.Expire(); err != nil {
		return apperrors.NewConflictError(err.Error())
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.trialRepo.Update(txCtx, trial); err != nil {
			return fmt.Errorf("failed to update trial: %w", err)
		}
		if _, err := s.entitlementRepo.RevokeAllByUser(txCtx, userID, trial.TenantKey()); err != nil {
			return fmt.Errorf("failed to revoke trial grants: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Errorw("failed to expire trial", "error", err, "user_id", userID)
		return err
	}

	s.logger.Infow("trial expired", "user_id", userID)
	return nil
}

// CancelTrial resolves the trial as cancelled by the user.
func (s *TrialService) CancelTrial(ctx context.Context, userID string) error {
	return s.resolve(ctx, userID, (*lifecycle.Trial).Cancel, "cancelled")
}

// GetTrial returns the user's trial record.
func (s *TrialService) GetTrial(ctx context.Context, userID string) (*lifecycle.Trial, error) {
	return s.getTrial(ctx, userID)
}

// GetExpiringTrials returns active trials ending inside the window. Pure
// read for the scheduler; no transition happens here.
func (s *TrialService) GetExpiringTrials(ctx context.Context, window time.Duration) ([]*lifecycle.Trial, error) {
	return s.trialRepo.GetExpiring(ctx, window)
}

// ScanExpiring sends a best-effort expiry warning for every trial ending
// inside the window. Notification failures are logged and swallowed.
func (s *TrialService) ScanExpiring(ctx context.Context, window time.Duration) (int, error) {
	trials, err := s.trialRepo.GetExpiring(ctx, window)
	if err != nil {
		return 0, fmt.Errorf("failed to scan expiring trials: %w", err)
	}

	for _, trial := range trials {
		if err := s.notifier.SendTrialExpiryWarning(trial.UserID(), trial.EndAt()); err != nil {
			s.logger.Warnw("trial expiry warning failed",
				"error", err,
				"user_id", trial.UserID(),
				"end_at", trial.EndAt(),
			)
		}
	}

	s.logger.Infow("expiring trial scan finished", "window", window, "count", len(trials))
	return len(trials), nil
}

func (s *TrialService) getTrial(ctx context.Context, userID string) (*lifecycle.Trial, error) {
	trial, err := s.trialRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrTrialNotFound) || apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError("trial not found")
		}
		return nil, fmt.Errorf("failed to load trial: %w", err)
	}
	return trial, nil
}

func (s *TrialService) resolve(ctx context.Context, userID string, transition func(*lifecycle.Trial) error, outcome string) error {
	trial, err := s.getTrial(ctx, userID)
	if err != nil {
		return err
	}
	if err := transition(trial); err != nil {
		s.logger.Warnw("trial transition rejected", "user_id", userID, "outcome", outcome, "error", err)
		return apperrors.NewConflictError(err.Error())
	}
	if err := s.trialRepo.Update(ctx, trial); err != nil {
		s.logger.Errorw("failed to update trial", "error", err, "user_id", userID)
		return fmt.Errorf("failed to update trial: %w", err)
	}

	s.logger.Infow("trial resolved", "user_id", userID, "outcome", outcome)
	return nil
}
