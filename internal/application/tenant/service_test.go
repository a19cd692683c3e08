package tenant

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/domain/usage"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockTenantRepo struct {
	tenants   map[string]*tenant.Tenant
	overrides map[string]int64
	updates   int
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{
		tenants:   map[string]*tenant.Tenant{},
		overrides: map[string]int64{},
	}
}

func (m *mockTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error {
	if _, exists := m.tenants[t.Key()]; exists {
		return apperrors.NewConflictError("tenant key already registered")
	}
	m.tenants[t.Key()] = t
	return nil
}

func (m *mockTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error {
	m.updates++
	return nil
}

func (m *mockTenantRepo) GetByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	t, ok := m.tenants[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("tenant not found")
	}
	return t, nil
}

func (m *mockTenantRepo) QuotaOverride(ctx context.Context, key, feature string) (int64, bool, error) {
	limit, ok := m.overrides[key+"/"+feature]
	return limit, ok, nil
}

func (m *mockTenantRepo) SetQuotaOverride(ctx context.Context, key, feature string, limit int64) error {
	m.overrides[key+"/"+feature] = limit
	return nil
}

func TestService_Register(t *testing.T) {
	repo := newMockTenantRepo()
	svc := NewService(repo, testLogger())

	registered, err := svc.Register(context.Background(), "acme", "Acme", "pro")
	require.NoError(t, err)
	require.NotNil(t, registered)

	assert.Equal(t, "acme", registered.Key())
	assert.Equal(t, "pro", registered.PlanTier())
	assert.True(t, registered.IsActive())
}

func TestService_Register_DuplicateKey(t *testing.T) {
	repo := newMockTenantRepo()
	svc := NewService(repo, testLogger())

	_, err := svc.Register(context.Background(), "acme", "Acme", "pro")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "acme", "Acme Again", "free")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestService_Register_InvalidTier(t *testing.T) {
	svc := NewService(newMockTenantRepo(), testLogger())

	_, err := svc.Register(context.Background(), "acme", "Acme", "platinum")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestService_Resolve(t *testing.T) {
	repo := newMockTenantRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "acme", "Acme", "pro")
	require.NoError(t, err)

	tctx, err := svc.Resolve(ctx, "acme", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", tctx.TenantKey)
	assert.Equal(t, "user-1", tctx.UserID)
}

func TestService_Resolve_UnknownTenant(t *testing.T) {
	svc := NewService(newMockTenantRepo(), testLogger())

	_, err := svc.Resolve(context.Background(), "ghost", "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestService_Resolve_DeactivatedTenant(t *testing.T) {
	repo := newMockTenantRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	registered, err := svc.Register(ctx, "acme", "Acme", "pro")
	require.NoError(t, err)
	registered.Deactivate()

	_, err = svc.Resolve(ctx, "acme", "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsForbiddenError(err))
}

func TestService_Resolve_EmptyIdentity(t *testing.T) {
	svc := NewService(newMockTenantRepo(), testLogger())

	_, err := svc.Resolve(context.Background(), "", "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.Resolve(context.Background(), "acme", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestService_ChangePlanTier(t *testing.T) {
	repo := newMockTenantRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	registered, err := svc.Register(ctx, "acme", "Acme", "free")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePlanTier(ctx, "acme", "enterprise"))
	assert.Equal(t, "enterprise", registered.PlanTier())
	assert.Equal(t, 1, repo.updates)

	err = svc.ChangePlanTier(ctx, "acme", "platinum")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestService_SetQuotaOverride(t *testing.T) {
	repo := newMockTenantRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "acme", "Acme", "free")
	require.NoError(t, err)

	require.NoError(t, svc.SetQuotaOverride(ctx, "acme", "ai_calls", 500))
	limit, ok, err := repo.QuotaOverride(ctx, "acme", "ai_calls")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(500), limit)

	// The unlimited sentinel is a legal override value.
	require.NoError(t, svc.SetQuotaOverride(ctx, "acme", "exports", usage.Unlimited))

	err = svc.SetQuotaOverride(ctx, "acme", "ai_calls", -2)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	err = svc.SetQuotaOverride(ctx, "ghost", "ai_calls", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}
