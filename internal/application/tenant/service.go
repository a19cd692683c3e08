// Package tenant provides application services for tenant management
// and per-request tenant resolution.
package tenant

import (
	"context"
	"fmt"

	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/domain/usage"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Service orchestrates tenant registration, activation state and
// per-tenant quota overrides.
type Service struct {
	tenantRepo tenant.Repository
	logger     logger.Interface
}

// NewService creates a new tenant service
func NewService(tenantRepo tenant.Repository, logger logger.Interface) *Service {
	return &Service{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// Register creates a new active tenant on the given plan tier.
func (s *Service) Register(ctx context.Context, key, name, planTier string) (*tenant.Tenant, error) {
	if !usage.Tier(planTier).IsValid() {
		s.logger.Warnw("invalid plan tier", "plan_tier", planTier)
		return nil, errors.NewValidationError(fmt.Sprintf("invalid plan tier: %s", planTier))
	}

	t, err := tenant.NewTenant(key, name, planTier)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.tenantRepo.Create(ctx, t); err != nil {
		if errors.IsConflictError(err) {
			s.logger.Warnw("tenant key already registered", "tenant_key", key)
			return nil, err
		}
		s.logger.Errorw("failed to create tenant", "error", err, "tenant_key", key)
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.Infow("tenant registered", "tenant_key", key, "plan_tier", planTier)
	return t, nil
}

// Resolve builds the request context for an authenticated (tenant, user)
// pair, rejecting unknown and deactivated tenants. This is the only
// place a tenant.Context is constructed on the request path.
func (s *Service) Resolve(ctx context.Context, tenantKey, userID string) (tenant.Context, error) {
	tctx, err := tenant.NewContext(tenantKey, userID)
	if err != nil {
		return tenant.Context{}, errors.NewValidationError(err.Error())
	}

	t, err := s.tenantRepo.GetByKey(ctx, tenantKey)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return tenant.Context{}, errors.NewNotFoundError("tenant not found")
		}
		s.logger.Errorw("failed to load tenant", "error", err, "tenant_key", tenantKey)
		return tenant.Context{}, fmt.Errorf("failed to load tenant: %w", err)
	}

	if !t.IsActive() {
		s.logger.Warnw("request for deactivated tenant", "tenant_key", tenantKey, "user_id", userID)
		return tenant.Context{}, errors.NewForbiddenError("tenant is deactivated")
	}

	return tctx, nil
}

// Get returns the tenant for a key.
func (s *Service) Get(ctx context.Context, key string) (*tenant.Tenant, error) {
	t, err := s.tenantRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.NewNotFoundError("tenant not found")
		}
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	return t, nil
}

// ChangePlanTier moves a tenant to a different plan tier.
func (s *Service) ChangePlanTier(ctx context.Context, key, planTier string) error {
	if !usage.Tier(planTier).IsValid() {
		return errors.NewValidationError(fmt.Sprintf("invalid plan tier: %s", planTier))
	}

	t, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := t.ChangePlanTier(planTier); err != nil {
		return errors.NewValidationError(err.Error())
	}
	if err := s.tenantRepo.Update(ctx, t); err != nil {
		s.logger.Errorw("failed to update tenant plan", "error", err, "tenant_key", key)
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	s.logger.Infow("tenant plan changed", "tenant_key", key, "plan_tier", planTier)
	return nil
}

// SetQuotaOverride configures a per-tenant ceiling override for one
// feature, resolved ahead of the static tier table.
func (s *Service) SetQuotaOverride(ctx context.Context, key, feature string, limit int64) error {
	if limit < usage.Unlimited {
		return errors.NewValidationError("quota override cannot be below the unlimited sentinel")
	}
	if _, err := s.Get(ctx, key); err != nil {
		return err
	}
	if err := s.tenantRepo.SetQuotaOverride(ctx, key, feature, limit); err != nil {
		s.logger.Errorw("failed to set quota override", "error", err, "tenant_key", key, "feature", feature)
		return fmt.Errorf("failed to set quota override: %w", err)
	}

	s.logger.Infow("quota override set", "tenant_key", key, "feature", feature, "limit", limit)
	return nil
}
