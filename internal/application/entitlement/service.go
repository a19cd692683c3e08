// Package entitlement provides the application service over the
// entitlement store: grant, revoke, check, revoke-all.
package entitlement

import (
	"context"
	"fmt"

	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Service implements the entitlement store contract.
type Service struct {
	entitlementRepo entitlement.Repository
	logger          logger.Interface
}

// NewService creates a new entitlement service
func NewService(entitlementRepo entitlement.Repository, logger logger.Interface) *Service {
	return &Service{
		entitlementRepo: entitlementRepo,
		logger:          logger,
	}
}

// Grant grants a feature to the user. A previously revoked grant is
// restored in place so the row keeps its audit history; granting an
// already-active feature is a no-op returning the existing grant.
func (s *Service) Grant(ctx context.Context, tctx tenant.Context, feature entitlement.Feature, source entitlement.SourceType) (*entitlement.Entitlement, error) {
	if !feature.IsValid() {
		s.logger.Warnw("invalid feature", "feature", feature)
		return nil, errors.NewValidationError(fmt.Sprintf("invalid feature: %s", feature))
	}
	if !source.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid source type: %s", source))
	}

	existing, err := s.entitlementRepo.GetByUserAndFeature(ctx, tctx.UserID, tctx.TenantKey, feature)
	if err != nil && !errors.IsNotFoundError(err) {
		s.logger.Errorw("failed to check existing grant", "error", err, "user_id", tctx.UserID, "feature", feature)
		return nil, fmt.Errorf("failed to check existing entitlement: %w", err)
	}

	if existing != nil {
		if existing.IsGranted() {
			return existing, nil
		}
		existing.Regrant()
		if err := s.entitlementRepo.Update(ctx, existing); err != nil {
			s.logger.Errorw("failed to restore grant", "error", err, "user_id", tctx.UserID, "feature", feature)
			return nil, fmt.Errorf("failed to restore entitlement: %w", err)
		}
		s.logger.Infow("entitlement restored", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey, "feature", feature)
		return existing, nil
	}

	e, err := entitlement.NewEntitlement(tctx.UserID, tctx.TenantKey, feature, source)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.entitlementRepo.Create(ctx, e); err != nil {
		s.logger.Errorw("failed to persist grant", "error", err, "user_id", tctx.UserID, "feature", feature)
		return nil, fmt.Errorf("failed to save entitlement: %w", err)
	}

	s.logger.Infow("entitlement granted",
		"user_id", tctx.UserID,
		"tenant_key", tctx.TenantKey,
		"feature", feature,
		"source", source,
	)
	return e, nil
}

// Revoke soft-revokes the user's grant for a feature. Revoking a feature
// the user never held, or one already revoked, is a no-op.
func (s *Service) Revoke(ctx context.Context, tctx tenant.Context, feature entitlement.Feature) error {
	if !feature.IsValid() {
		return errors.NewValidationError(fmt.Sprintf("invalid feature: %s", feature))
	}

	e, err := s.entitlementRepo.GetByUserAndFeature(ctx, tctx.UserID, tctx.TenantKey, feature)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to load entitlement: %w", err)
	}
	if !e.IsGranted() {
		return nil
	}

	e.Revoke()
	if err := s.entitlementRepo.Update(ctx, e); err != nil {
		s.logger.Errorw("failed to persist revocation", "error", err, "user_id", tctx.UserID, "feature", feature)
		return fmt.Errorf("failed to revoke entitlement: %w", err)
	}

	s.logger.Infow("entitlement revoked", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey, "feature", feature)
	return nil
}

// Has reports whether the user currently holds an active grant for the
// feature. A missing row reads as "not entitled", never an error.
func (s *Service) Has(ctx context.Context, tctx tenant.Context, feature entitlement.Feature) (bool, error) {
	if !feature.IsValid() {
		return false, errors.NewValidationError(fmt.Sprintf("invalid feature: %s", feature))
	}
	return s.entitlementRepo.HasActive(ctx, tctx.UserID, tctx.TenantKey, feature)
}

// RevokeAll soft-revokes every active grant for the user. Idempotent:
// repeating the call revokes nothing further and does not error.
func (s *Service) RevokeAll(ctx context.Context, tctx tenant.Context) (int64, error) {
	revoked, err := s.entitlementRepo.RevokeAllByUser(ctx, tctx.UserID, tctx.TenantKey)
	if err != nil {
		s.logger.Errorw("failed to revoke all grants", "error", err, "user_id", tctx.UserID)
		return 0, fmt.Errorf("failed to revoke entitlements: %w", err)
	}
	if revoked > 0 {
		s.logger.Infow("all entitlements revoked", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey, "revoked", revoked)
	}
	return revoked, nil
}

// List returns every grant row for the user, revoked rows included.
func (s *Service) List(ctx context.Context, tctx tenant.Context) ([]*entitlement.Entitlement, error) {
	return s.entitlementRepo.GetByUser(ctx, tctx.UserID, tctx.TenantKey)
}
