// Package billing translates payment-processor subscription events into
// entitlement and trial transitions. The processor pushes state changes
// in; nothing here calls out to it.
package billing

import (
	"context"
	"fmt"

	abusesvc "github.com/veyra-inc/veyra/internal/application/abuse"
	entitlementsvc "github.com/veyra-inc/veyra/internal/application/entitlement"
	lifecyclesvc "github.com/veyra-inc/veyra/internal/application/lifecycle"
	tenantsvc "github.com/veyra-inc/veyra/internal/application/tenant"
	"github.com/veyra-inc/veyra/internal/domain/abuse"
	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Service handles inbound subscription lifecycle notifications.
type Service struct {
	entitlements *entitlementsvc.Service
	trials       *lifecyclesvc.TrialService
	tenants      *tenantsvc.Service
	abuseSvc     *abusesvc.Service
	logger       logger.Interface
}

// NewService creates a new billing service
func NewService(
	entitlements *entitlementsvc.Service,
	trials *lifecyclesvc.TrialService,
	tenants *tenantsvc.Service,
	abuseSvc *abusesvc.Service,
	logger logger.Interface,
) *Service {
	return &Service{
		entitlements: entitlements,
		trials:       trials,
		tenants:      tenants,
		abuseSvc:     abuseSvc,
		logger:       logger,
	}
}

// HandleSubscriptionCreated grants every feature from the subscription
// source and converts a live trial if one exists.
func (s *Service) HandleSubscriptionCreated(ctx context.Context, tctx tenant.Context, planTier string) error {
	if err := s.tenants.ChangePlanTier(ctx, tctx.TenantKey, planTier); err != nil {
		return err
	}

	for _, feature := range entitlement.AllFeatures() {
		if _, err := s.entitlements.Grant(ctx, tctx, feature, entitlement.SourceTypeSubscription); err != nil {
			return fmt.Errorf("failed to grant %s: %w", feature, err)
		}
	}

	// A user subscribing without ever trialing is the common path; the
	// missing trial record is not an error here.
	if err := s.trials.ConvertTrial(ctx, tctx.UserID); err != nil && !apperrors.IsNotFoundError(err) && !apperrors.IsConflictError(err) {
		return err
	}

	s.logger.Infow("subscription created",
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"plan_tier", planTier,
	)
	return nil
}

// HandleSubscriptionUpdated moves the tenant to the new plan tier.
func (s *Service) HandleSubscriptionUpdated(ctx context.Context, tctx tenant.Context, planTier string) error {
	if err := s.tenants.ChangePlanTier(ctx, tctx.TenantKey, planTier); err != nil {
		return err
	}
	s.logger.Infow("subscription updated", "tenant_key", tctx.TenantKey, "plan_tier", planTier)
	return nil
}

// HandleSubscriptionDeleted soft-revokes every grant for the user.
func (s *Service) HandleSubscriptionDeleted(ctx context.Context, tctx tenant.Context) error {
	revoked, err := s.entitlements.RevokeAll(ctx, tctx)
	if err != nil {
		return err
	}
	s.logger.Infow("subscription deleted", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey, "revoked", revoked)
	return nil
}

// HandlePaymentFailed records an advisory payment-fraud event; repeated
// failures surface to review, they never revoke anything by themselves.
func (s *Service) HandlePaymentFailed(ctx context.Context, tctx tenant.Context, attempt int) error {
	severity := abuse.SeverityLow
	if attempt >= 3 {
		severity = abuse.SeverityMedium
	}

	if _, err := s.abuseSvc.RecordEvent(ctx, tctx, abuse.EventTypePaymentFraud, severity, map[string]any{
		"attempt": attempt,
	}); err != nil {
		return err
	}

	s.logger.Warnw("payment failed", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey, "attempt", attempt)
	return nil
}
