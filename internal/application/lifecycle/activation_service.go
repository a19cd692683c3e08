package lifecycle

import (
	"context"
	"fmt"

	"github.com/veyra-inc/veyra/internal/application/notification"
	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// ActivationService records first-use activation milestones. The write
// is first-write-wins idempotent per (user, event); the analytics emit
// runs after the commit inside its own error boundary.
type ActivationService struct {
	activationRepo lifecycle.ActivationRepository
	events         notification.Events
	logger         logger.Interface
}

// NewActivationService creates a new activation service
func NewActivationService(
	activationRepo lifecycle.ActivationRepository,
	events notification.Events,
	logger logger.Interface,
) *ActivationService {
	return &ActivationService{
		activationRepo: activationRepo,
		events:         events,
		logger:         logger,
	}
}

// Record appends an activation event. A second call for the same
// (user, event) pair returns the original row unchanged, identical
// identity and timestamp, and never raises.
func (s *ActivationService) Record(ctx context.Context, tctx tenant.Context, eventName string, metadata map[string]any) (*lifecycle.ActivationEvent, error) {
	if eventName == "" {
		return nil, apperrors.NewValidationError("event name is required")
	}

	existing, err := s.activationRepo.GetByUserAndEvent(ctx, tctx.UserID, eventName)
	if err != nil {
		s.logger.Errorw("failed to check existing activation", "error", err, "user_id", tctx.UserID, "event", eventName)
		return nil, fmt.Errorf("failed to check existing activation: %w", err)
	}
	if existing != nil {
		s.logger.Debugw("activation already recorded", "user_id", tctx.UserID, "event", eventName)
		return existing, nil
	}

	event, err := lifecycle.NewActivationEvent(tctx.UserID, tctx.TenantKey, eventName, metadata)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.activationRepo.Create(ctx, event); err != nil {
		// Lost a race with a concurrent first call; the winner's row is
		// the record of truth.
		if apperrors.IsConflictError(err) || apperrors.IsDuplicateError(err) {
			winner, getErr := s.activationRepo.GetByUserAndEvent(ctx, tctx.UserID, eventName)
			if getErr == nil && winner != nil {
				return winner, nil
			}
		}
		s.logger.Errorw("failed to record activation", "error", err, "user_id", tctx.UserID, "event", eventName)
		return nil, fmt.Errorf("failed to record activation: %w", err)
	}

	s.logger.Infow("activation recorded", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey, "event", eventName)

	// Best effort. The primary row is already committed; an analytics
	// failure is logged and discarded.
	if err := s.events.Emit("user_activated", map[string]any{
		"user_id":    tctx.UserID,
		"tenant_key": tctx.TenantKey,
		"event":      eventName,
	}); err != nil {
		s.logger.Warnw("activation analytics emit failed", "error", err, "user_id", tctx.UserID, "event", eventName)
	}

	return event, nil
}

// IsActivated reports whether any activation row exists for the user.
func (s *ActivationService) IsActivated(ctx context.Context, userID string) (bool, error) {
	return s.activationRepo.IsActivated(ctx, userID)
}
