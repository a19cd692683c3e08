package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
)

func newClosureFixture(t *testing.T) (*ClosureService, *mockClosureRepo, *mockPurgeRepo, *mockTenantRepo, *mockEntitlementRepo, *mockNotifier) {
	t.Helper()

	closureRepo := &mockClosureRepo{}
	purgeRepo := &mockPurgeRepo{counts: map[string]int64{
		"user_entitlements": 4,
		"usage_counters":    2,
		"trial_records":     1,
	}}
	active, err := tenant.ReconstructTenant(1, "acme", "Acme", "pro", true, time.Now(), time.Now())
	require.NoError(t, err)
	tenantRepo := &mockTenantRepo{tenant: active}
	entRepo := &mockEntitlementRepo{revoked: 4}
	notifier := &mockNotifier{}

	txManager, _ := testTx()
	svc := NewClosureService(closureRepo, purgeRepo, tenantRepo, entRepo, txManager, notifier, testLogger(), 30)
	return svc, closureRepo, purgeRepo, tenantRepo, entRepo, notifier
}

func closureCtx(t *testing.T) tenant.Context {
	t.Helper()
	tctx, err := tenant.NewContext("acme", "user-1")
	require.NoError(t, err)
	return tctx
}

func TestClosureService_InitiateClosure(t *testing.T) {
	svc, closureRepo, _, tenantRepo, entRepo, notifier := newClosureFixture(t)
	_, ctx := testTx()

	closure, err := svc.InitiateClosure(ctx, closureCtx(t))
	require.NoError(t, err)
	require.NotNil(t, closure)

	assert.Equal(t, lifecycle.ClosureStatusPendingPurge, closure.Status())
	assert.Equal(t, 1, closureRepo.created)
	assert.False(t, tenantRepo.tenant.IsActive())
	assert.Equal(t, 1, entRepo.revokeRuns)
	assert.Equal(t, 1, notifier.closureNotices)
}

func TestClosureService_InitiateClosure_AlreadyPending(t *testing.T) {
	svc, closureRepo, _, _, _, _ := newClosureFixture(t)
	pending, _ := lifecycle.NewClosure("user-1", "acme", 30)
	closureRepo.pending = pending
	_, ctx := testTx()

	_, err := svc.InitiateClosure(ctx, closureCtx(t))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.Zero(t, closureRepo.created)
}

func TestClosureService_CancelClosure(t *testing.T) {
	svc, closureRepo, _, tenantRepo, _, _ := newClosureFixture(t)
	pending, _ := lifecycle.NewClosure("user-1", "acme", 30)
	closureRepo.pending = pending
	closureRepo.latest = pending
	tenantRepo.tenant.Deactivate()
	_, ctx := testTx()

	cancelled, err := svc.CancelClosure(ctx, closureCtx(t))
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, lifecycle.ClosureStatusReactivated, pending.Status())
	assert.True(t, tenantRepo.tenant.IsActive())
}

func TestClosureService_CancelClosure_NothingPending(t *testing.T) {
	svc, _, _, _, _, _ := newClosureFixture(t)
	_, ctx := testTx()

	// Nothing pending is a no-op, not a failure.
	cancelled, err := svc.CancelClosure(ctx, closureCtx(t))
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestClosureService_ExecutePurge(t *testing.T) {
	svc, closureRepo, purgeRepo, tenantRepo, _, _ := newClosureFixture(t)
	pending, _ := lifecycle.NewClosure("user-1", "acme", 30)
	closureRepo.pending = pending
	closureRepo.latest = pending
	_, ctx := testTx()

	counts, err := svc.ExecutePurge(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, purgeRepo.counts, counts)
	// Counter deletion is scoped by the tenant key on the record, never
	// caller input.
	assert.Equal(t, "acme", purgeRepo.lastKey)
	assert.Equal(t, lifecycle.ClosureStatusPurged, pending.Status())
	assert.False(t, tenantRepo.tenant.IsActive())
}

func TestClosureService_ExecutePurge_NoClosureRecord(t *testing.T) {
	svc, _, purgeRepo, _, _, _ := newClosureFixture(t)
	_, ctx := testTx()

	// A purge without a closure record must fail loudly, never delete.
	_, err := svc.ExecutePurge(ctx, "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Zero(t, purgeRepo.runs)
}

func TestClosureService_ExecutePurge_ReactivatedClosure(t *testing.T) {
	svc, closureRepo, purgeRepo, _, _, _ := newClosureFixture(t)
	closure, _ := lifecycle.NewClosure("user-1", "acme", 30)
	require.NoError(t, closure.Reactivate())
	closureRepo.latest = closure
	_, ctx := testTx()

	_, err := svc.ExecutePurge(ctx, "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.Zero(t, purgeRepo.runs)
}

func TestClosureService_ExecutePurge_RerunIsIdempotent(t *testing.T) {
	svc, closureRepo, purgeRepo, _, _, _ := newClosureFixture(t)
	pending, _ := lifecycle.NewClosure("user-1", "acme", 30)
	closureRepo.pending = pending
	closureRepo.latest = pending
	_, ctx := testTx()

	_, err := svc.ExecutePurge(ctx, "user-1")
	require.NoError(t, err)

	// Second run against the purged record deletes whatever is left
	// (zero in practice) and does not error.
	purgeRepo.counts = map[string]int64{}
	counts, err := svc.ExecutePurge(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.Equal(t, 2, purgeRepo.runs)
}

func TestClosureService_RunPurgeSweep(t *testing.T) {
	svc, closureRepo, purgeRepo, _, _, _ := newClosureFixture(t)

	past := time.Now().Add(-31 * 24 * time.Hour)
	due, err := lifecycle.ReconstructClosure(1, "user-1", "acme",
		lifecycle.ClosureStatusPendingPurge, past, past.Add(30*24*time.Hour), nil, past, past)
	require.NoError(t, err)
	closureRepo.due = []*lifecycle.Closure{due}
	closureRepo.latest = due
	_, ctx := testTx()

	purged, err := svc.RunPurgeSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, purgeRepo.runs)
}
