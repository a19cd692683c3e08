// Package usage provides the application service over the usage-quota
// ledger and the AI cost log.
package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/domain/usage"
	"github.com/veyra-inc/veyra/internal/shared/biztime"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Service implements the quota ledger contract: resolve the period key
// and effective ceiling, then check-and-increment atomically.
type Service struct {
	counterRepo usage.CounterRepository
	costLogRepo usage.CostLogRepository
	tenantRepo  tenant.Repository
	logger      logger.Interface
}

// NewService creates a new usage service
func NewService(
	counterRepo usage.CounterRepository,
	costLogRepo usage.CostLogRepository,
	tenantRepo tenant.Repository,
	logger logger.Interface,
) *Service {
	return &Service{
		counterRepo: counterRepo,
		costLogRepo: costLogRepo,
		tenantRepo:  tenantRepo,
		logger:      logger,
	}
}

// EffectiveCeiling resolves the monthly ceiling for a tenant and
// feature: per-tenant override first, then the static tier table.
func (s *Service) EffectiveCeiling(ctx context.Context, tenantKey, feature string) (int64, error) {
	limit, found, err := s.tenantRepo.QuotaOverride(ctx, tenantKey, feature)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve quota override: %w", err)
	}
	if found {
		return limit, nil
	}

	t, err := s.tenantRepo.GetByKey(ctx, tenantKey)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return 0, apperrors.NewNotFoundError("tenant not found")
		}
		return 0, fmt.Errorf("failed to load tenant: %w", err)
	}

	tier := usage.Tier(t.PlanTier())
	if !tier.IsValid() {
		s.logger.Errorw("tenant has unknown plan tier", "tenant_key", tenantKey, "plan_tier", t.PlanTier())
		return 0, fmt.Errorf("%w: %s", usage.ErrInvalidTier, t.PlanTier())
	}
	return tier.Ceiling(feature), nil
}

// CheckAndIncrement consumes one unit of quota for the current monthly
// period. Returns a limit-exceeded error, without incrementing, when the
// counter is at or over the effective ceiling.
func (s *Service) CheckAndIncrement(ctx context.Context, tctx tenant.Context, feature string) (int64, error) {
	ceiling, err := s.EffectiveCeiling(ctx, tctx.TenantKey, feature)
	if err != nil {
		return 0, err
	}

	periodKey := biztime.CurrentPeriodKey()
	count, err := s.counterRepo.CheckAndIncrement(ctx, tctx.TenantKey, feature, periodKey, ceiling)
	if err != nil {
		if errors.Is(err, usage.ErrLimitExceeded) {
			s.logger.Warnw("usage limit exceeded",
				"tenant_key", tctx.TenantKey,
				"feature", feature,
				"period_key", periodKey,
				"ceiling", ceiling,
			)
			return 0, apperrors.NewLimitExceededError(
				fmt.Sprintf("monthly limit reached for %s", feature),
			)
		}
		s.logger.Errorw("failed to increment usage counter", "error", err, "tenant_key", tctx.TenantKey, "feature", feature)
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}

	return count, nil
}

// GetCurrentUsage returns the tenant's counter value for a feature in
// the current period, zero when nothing has been consumed yet.
func (s *Service) GetCurrentUsage(ctx context.Context, tenantKey, feature string) (int64, error) {
	return s.counterRepo.GetCount(ctx, tenantKey, feature, biztime.CurrentPeriodKey())
}

// RecordAICost appends one AI cost log row. The cost log is the
// financial source of truth and is written after the quota check passed;
// it is never part of quota enforcement itself.
func (s *Service) RecordAICost(ctx context.Context, tctx tenant.Context, model string, tokensUsed, costCents int64) (*usage.CostLogEntry, error) {
	entry, err := usage.NewCostLogEntry(tctx.UserID, tctx.TenantKey, model, tokensUsed, costCents)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.costLogRepo.Append(ctx, entry); err != nil {
		s.logger.Errorw("failed to append AI cost log row",
			"error", err,
			"user_id", tctx.UserID,
			"tenant_key", tctx.TenantKey,
			"model", model,
		)
		return nil, fmt.Errorf("failed to record AI cost: %w", err)
	}

	s.logger.Debugw("AI cost recorded",
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"model", model,
		"tokens_used", tokensUsed,
		"cost_cents", costCents,
	)
	return entry, nil
}
