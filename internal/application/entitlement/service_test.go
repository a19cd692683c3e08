package entitlement

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockRepo struct {
	rows    map[string]*entitlement.Entitlement
	creates int
	updates int
}

func newMockRepo() *mockRepo {
	return &mockRepo{rows: map[string]*entitlement.Entitlement{}}
}

func (m *mockRepo) key(userID, tenantKey string, feature entitlement.Feature) string {
	return userID + "/" + tenantKey + "/" + feature.String()
}

func (m *mockRepo) Create(ctx context.Context, e *entitlement.Entitlement) error {
	m.creates++
	m.rows[m.key(e.UserID(), e.TenantKey(), e.Feature())] = e
	return nil
}

func (m *mockRepo) Update(ctx context.Context, e *entitlement.Entitlement) error {
	m.updates++
	return nil
}

func (m *mockRepo) GetByUserAndFeature(ctx context.Context, userID, tenantKey string, feature entitlement.Feature) (*entitlement.Entitlement, error) {
	e, ok := m.rows[m.key(userID, tenantKey, feature)]
	if !ok {
		return nil, entitlement.ErrEntitlementNotFound
	}
	return e, nil
}

func (m *mockRepo) GetByUser(ctx context.Context, userID, tenantKey string) ([]*entitlement.Entitlement, error) {
	var out []*entitlement.Entitlement
	for _, e := range m.rows {
		if e.UserID() == userID && e.TenantKey() == tenantKey {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) HasActive(ctx context.Context, userID, tenantKey string, feature entitlement.Feature) (bool, error) {
	e, ok := m.rows[m.key(userID, tenantKey, feature)]
	return ok && e.IsGranted(), nil
}

func (m *mockRepo) RevokeAllByUser(ctx context.Context, userID, tenantKey string) (int64, error) {
	var revoked int64
	for _, e := range m.rows {
		if e.UserID() == userID && e.TenantKey() == tenantKey && e.IsGranted() {
			e.Revoke()
			revoked++
		}
	}
	return revoked, nil
}

func entCtx(t *testing.T) tenant.Context {
	t.Helper()
	tctx, err := tenant.NewContext("acme", "user-1")
	require.NoError(t, err)
	return tctx
}

func TestService_Grant(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	granted, err := svc.Grant(ctx, entCtx(t), entitlement.FeatureAICalls, entitlement.SourceTypeSubscription)
	require.NoError(t, err)
	require.NotNil(t, granted)
	assert.True(t, granted.IsGranted())
	assert.Equal(t, 1, repo.creates)

	has, err := svc.Has(ctx, entCtx(t), entitlement.FeatureAICalls)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestService_Grant_ActiveGrantIsNoOp(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	first, err := svc.Grant(ctx, entCtx(t), entitlement.FeatureAICalls, entitlement.SourceTypeSubscription)
	require.NoError(t, err)

	second, err := svc.Grant(ctx, entCtx(t), entitlement.FeatureAICalls, entitlement.SourceTypeTrial)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.creates)
	assert.Zero(t, repo.updates)
}

func TestService_Grant_RestoresRevokedRow(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	granted, err := svc.Grant(ctx, entCtx(t), entitlement.FeatureAICalls, entitlement.SourceTypeSubscription)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, entCtx(t), entitlement.FeatureAICalls))
	assert.False(t, granted.IsGranted())

	// Regrant mutates the existing row instead of inserting a second one,
	// so the audit history stays on one row.
	restored, err := svc.Grant(ctx, entCtx(t), entitlement.FeatureAICalls, entitlement.SourceTypeSubscription)
	require.NoError(t, err)
	assert.Same(t, granted, restored)
	assert.True(t, restored.IsGranted())
	assert.Nil(t, restored.RevokedAt())
	assert.Equal(t, 1, repo.creates)
}

func TestService_Grant_InvalidInput(t *testing.T) {
	svc := NewService(newMockRepo(), testLogger())
	ctx := context.Background()

	_, err := svc.Grant(ctx, entCtx(t), entitlement.Feature("teleport"), entitlement.SourceTypeSubscription)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.Grant(ctx, entCtx(t), entitlement.FeatureAICalls, entitlement.SourceType("lottery"))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestService_Revoke_MissingRowIsNoOp(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())

	err := svc.Revoke(context.Background(), entCtx(t), entitlement.FeatureAICalls)
	require.NoError(t, err)
	assert.Zero(t, repo.updates)
}

func TestService_Revoke_AlreadyRevokedIsNoOp(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	_, err := svc.Grant(ctx, entCtx(t), entitlement.FeatureAICalls, entitlement.SourceTypeSubscription)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, entCtx(t), entitlement.FeatureAICalls))
	updates := repo.updates

	require.NoError(t, svc.Revoke(ctx, entCtx(t), entitlement.FeatureAICalls))
	assert.Equal(t, updates, repo.updates)
}

func TestService_Has_MissingRowReadsFalse(t *testing.T) {
	svc := NewService(newMockRepo(), testLogger())

	has, err := svc.Has(context.Background(), entCtx(t), entitlement.FeatureExports)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestService_RevokeAll(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	for _, feature := range entitlement.AllFeatures() {
		_, err := svc.Grant(ctx, entCtx(t), feature, entitlement.SourceTypeSubscription)
		require.NoError(t, err)
	}

	revoked, err := svc.RevokeAll(ctx, entCtx(t))
	require.NoError(t, err)
	assert.Equal(t, int64(len(entitlement.AllFeatures())), revoked)

	// Second pass has nothing left to revoke.
	revoked, err = svc.RevokeAll(ctx, entCtx(t))
	require.NoError(t, err)
	assert.Zero(t, revoked)
}

func TestService_List_IncludesRevokedRows(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testLogger())
	ctx := context.Background()

	_, err := svc.Grant(ctx, entCtx(t), entitlement.FeatureAICalls, entitlement.SourceTypeSubscription)
	require.NoError(t, err)
	_, err = svc.Grant(ctx, entCtx(t), entitlement.FeatureExports, entitlement.SourceTypeSubscription)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, entCtx(t), entitlement.FeatureExports))

	rows, err := svc.List(ctx, entCtx(t))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
