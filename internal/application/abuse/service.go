// Package abuse provides fraud detection heuristics and the account
// lockout switch. Detection is advisory: it records fraud events for
// human review, it never blocks traffic by itself.
package abuse

import (
	"context"
	"fmt"
	"time"

	"github.com/veyra-inc/veyra/internal/domain/abuse"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/domain/usage"
	"github.com/veyra-inc/veyra/internal/shared/biztime"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// CeilingResolver resolves the effective monthly ceiling for a tenant
// and feature (per-tenant override, then tier table).
type CeilingResolver interface {
	EffectiveCeiling(ctx context.Context, tenantKey, feature string) (int64, error)
	GetCurrentUsage(ctx context.Context, tenantKey, feature string) (int64, error)
}

// Service implements the fraud-signal and lockout contracts.
type Service struct {
	fraudRepo   abuse.FraudEventRepository
	lockoutRepo abuse.LockoutRepository
	costLogRepo usage.CostLogRepository
	ceilings    CeilingResolver
	logger      logger.Interface
}

// NewService creates a new abuse service
func NewService(
	fraudRepo abuse.FraudEventRepository,
	lockoutRepo abuse.LockoutRepository,
	costLogRepo usage.CostLogRepository,
	ceilings CeilingResolver,
	logger logger.Interface,
) *Service {
	return &Service{
		fraudRepo:   fraudRepo,
		lockoutRepo: lockoutRepo,
		costLogRepo: costLogRepo,
		ceilings:    ceilings,
		logger:      logger,
	}
}

// RecordEvent appends a fraud event for review.
func (s *Service) RecordEvent(ctx context.Context, tctx tenant.Context, eventType abuse.EventType, severity abuse.Severity, detail map[string]any) (*abuse.FraudEvent, error) {
	event, err := abuse.NewFraudEvent(tctx.UserID, tctx.TenantKey, eventType, severity, detail)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.fraudRepo.Create(ctx, event); err != nil {
		s.logger.Errorw("failed to record fraud event", "error", err, "user_id", tctx.UserID, "event_type", eventType)
		return nil, fmt.Errorf("failed to record fraud event: %w", err)
	}

	s.logger.Warnw("fraud event recorded",
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"event_type", eventType,
		"severity", severity,
	)
	return event, nil
}

// ResolveEvent marks an event reviewed.
func (s *Service) ResolveEvent(ctx context.Context, eventID uint) error {
	event, err := s.fraudRepo.GetByID(ctx, eventID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.NewNotFoundError("fraud event not found")
		}
		return fmt.Errorf("failed to load fraud event: %w", err)
	}

	event.Resolve()
	if err := s.fraudRepo.Update(ctx, event); err != nil {
		return fmt.Errorf("failed to resolve fraud event: %w", err)
	}
	return nil
}

// DetectAIAbuse counts the user's AI calls inside a trailing window,
// computed fresh from the cost log on every call. Over threshold it
// records an advisory high-severity event and reports true.
func (s *Service) DetectAIAbuse(ctx context.Context, tctx tenant.Context, window time.Duration, threshold int64) (bool, error) {
	if window <= 0 || threshold <= 0 {
		return false, apperrors.NewValidationError("window and threshold must be positive")
	}

	since := time.Now().Add(-window)
	count, err := s.costLogRepo.CountByUserSince(ctx, tctx.UserID, since)
	if err != nil {
		return false, fmt.Errorf("failed to count AI calls: %w", err)
	}
	if count <= threshold {
		return false, nil
	}

	if _, err := s.RecordEvent(ctx, tctx, abuse.EventTypeAIAbuse, abuse.SeverityHigh, map[string]any{
		"window":    window.String(),
		"threshold": threshold,
		"count":     count,
	}); err != nil {
		return true, err
	}
	return true, nil
}

// DetectAPIAbuse projects month-end usage linearly from the day of month
// (count / dayOfMonth * 30) and flags when the projection exceeds
// multiplier times the effective ceiling. An unlimited ceiling never
// flags. The projection is a rough heuristic, not a billing figure.
func (s *Service) DetectAPIAbuse(ctx context.Context, tctx tenant.Context, feature string, multiplier float64) (bool, error) {
	if multiplier <= 0 {
		return false, apperrors.NewValidationError("multiplier must be positive")
	}

	ceiling, err := s.ceilings.EffectiveCeiling(ctx, tctx.TenantKey, feature)
	if err != nil {
		return false, err
	}
	if ceiling == usage.Unlimited {
		return false, nil
	}

	count, err := s.ceilings.GetCurrentUsage(ctx, tctx.TenantKey, feature)
	if err != nil {
		return false, err
	}

	dayOfMonth := biztime.DayOfMonth(time.Now())
	projected := float64(count) / float64(dayOfMonth) * 30
	if projected <= multiplier*float64(ceiling) {
		return false, nil
	}

	if _, err := s.RecordEvent(ctx, tctx, abuse.EventTypeAPIAbuse, abuse.SeverityMedium, map[string]any{
		"feature":    feature,
		"count":      count,
		"projected":  projected,
		"ceiling":    ceiling,
		"multiplier": multiplier,
	}); err != nil {
		return true, err
	}
	return true, nil
}

// LockAccount places the single active lockout on the user. Locking an
// already-locked account conflicts loudly; a double lock is a caller bug.
func (s *Service) LockAccount(ctx context.Context, tctx tenant.Context, reason string) (*abuse.Lockout, error) {
	active, err := s.lockoutRepo.GetActiveByUser(ctx, tctx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active lockout: %w", err)
	}
	if active != nil {
		s.logger.Warnw("account already locked", "user_id", tctx.UserID)
		return nil, apperrors.NewConflictError("account already locked")
	}

	lockout, err := abuse.NewLockout(tctx.UserID, tctx.TenantKey, reason)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := s.lockoutRepo.Create(ctx, lockout); err != nil {
		if apperrors.IsConflictError(err) {
			return nil, apperrors.NewConflictError("account already locked")
		}
		s.logger.Errorw("failed to create lockout", "error", err, "user_id", tctx.UserID)
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	s.logger.Warnw("account locked", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey, "reason", reason)
	return lockout, nil
}

// UnlockAccount lifts the active lockout. Returns false, not an error,
// when nothing is locked.
func (s *Service) UnlockAccount(ctx context.Context, userID string) (bool, error) {
	active, err := s.lockoutRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load active lockout: %w", err)
	}
	if active == nil {
		return false, nil
	}

	if err := active.Unlock(); err != nil {
		return false, apperrors.NewConflictError(err.Error())
	}
	if err := s.lockoutRepo.Update(ctx, active); err != nil {
		return false, fmt.Errorf("failed to unlock account: %w", err)
	}

	s.logger.Infow("account unlocked", "user_id", userID)
	return true, nil
}

// IsAccountLocked is a pure existence check, consulted on the request
// path ahead of entitlements since a lockout overrides them.
func (s *Service) IsAccountLocked(ctx context.Context, userID string) (bool, error) {
	return s.lockoutRepo.IsLocked(ctx, userID)
}

// GetUnresolvedEvents returns unreviewed fraud events, newest first.
func (s *Service) GetUnresolvedEvents(ctx context.Context, limit int) ([]*abuse.FraudEvent, error) {
	return s.fraudRepo.GetUnresolved(ctx, limit)
}
