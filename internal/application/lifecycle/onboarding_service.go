package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// OnboardingService manages the fixed three-step onboarding state.
type OnboardingService struct {
	onboardingRepo lifecycle.OnboardingRepository
	logger         logger.Interface
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(onboardingRepo lifecycle.OnboardingRepository, logger logger.Interface) *OnboardingService {
	return &OnboardingService{
		onboardingRepo: onboardingRepo,
		logger:         logger,
	}
}

// GetOrCreate returns the user's onboarding state, creating an empty one
// on first call. Idempotent: every later call returns the same row.
func (s *OnboardingService) GetOrCreate(ctx context.Context, tctx tenant.Context) (*lifecycle.Onboarding, error) {
	existing, err := s.onboardingRepo.GetByUser(ctx, tctx.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, lifecycle.ErrOnboardingNotFound) && !apperrors.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load onboarding state: %w", err)
	}

	state, err := lifecycle.NewOnboarding(tctx.UserID, tctx.TenantKey)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.onboardingRepo.Create(ctx, state); err != nil {
		// Lost a create race; the existing row wins.
		if apperrors.IsConflictError(err) || apperrors.IsDuplicateError(err) {
			return s.onboardingRepo.GetByUser(ctx, tctx.UserID)
		}
		s.logger.Errorw("failed to create onboarding state", "error", err, "user_id", tctx.UserID)
		return nil, fmt.Errorf("failed to create onboarding state: %w", err)
	}

	s.logger.Infow("onboarding started", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey)
	return state, nil
}

// MarkStepComplete marks one step done. Re-marking a done step is a
// no-op; completing the final missing step stamps completion exactly
// once. Requires an existing state row.
func (s *OnboardingService) MarkStepComplete(ctx context.Context, tctx tenant.Context, step lifecycle.OnboardingStep) (*lifecycle.Onboarding, error) {
	if !step.IsValid() {
		s.logger.Warnw("invalid onboarding step", "step", step, "user_id", tctx.UserID)
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid onboarding step: %s", step))
	}

	state, err := s.onboardingRepo.GetByUser(ctx, tctx.UserID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrOnboardingNotFound) || apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError("onboarding state not found")
		}
		return nil, fmt.Errorf("failed to load onboarding state: %w", err)
	}

	wasComplete := state.IsComplete()
	if err := state.MarkStepComplete(step); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.onboardingRepo.Update(ctx, state); err != nil {
		s.logger.Errorw("failed to update onboarding state", "error", err, "user_id", tctx.UserID, "step", step)
		return nil, fmt.Errorf("failed to update onboarding state: %w", err)
	}

	if !wasComplete && state.IsComplete() {
		s.logger.Infow("onboarding completed", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey)
	}
	return state, nil
}

// Reset clears all step progress and the completion stamp.
func (s *OnboardingService) Reset(ctx context.Context, tctx tenant.Context) error {
	state, err := s.onboardingRepo.GetByUser(ctx, tctx.UserID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrOnboardingNotFound) || apperrors.IsNotFoundError(err) {
			return apperrors.NewNotFoundError("onboarding state not found")
		}
		return fmt.Errorf("failed to load onboarding state: %w", err)
	}

	state.Reset()
	if err := s.onboardingRepo.Update(ctx, state); err != nil {
		return fmt.Errorf("failed to reset onboarding state: %w", err)
	}

	s.logger.Infow("onboarding reset", "user_id", tctx.UserID)
	return nil
}
