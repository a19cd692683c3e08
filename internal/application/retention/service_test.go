package retention

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/retention"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/db"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockPolicyRepo struct {
	policies map[string]*retention.Policy
}

func newMockPolicyRepo() *mockPolicyRepo {
	return &mockPolicyRepo{policies: map[string]*retention.Policy{}}
}

func (m *mockPolicyRepo) Upsert(ctx context.Context, p *retention.Policy) error {
	m.policies[p.DataTypeName()] = p
	return nil
}

func (m *mockPolicyRepo) GetByDataType(ctx context.Context, dataTypeName string) (*retention.Policy, error) {
	return m.policies[dataTypeName], nil
}

func (m *mockPolicyRepo) GetAll(ctx context.Context) ([]*retention.Policy, error) {
	var out []*retention.Policy
	for _, p := range m.policies {
		out = append(out, p)
	}
	return out, nil
}

type mockSweepRepo struct {
	deleted   map[string]int64
	cutoffs   map[string]time.Time
	snapshots map[string]map[uint]map[string]any
}

func newMockSweepRepo() *mockSweepRepo {
	return &mockSweepRepo{
		deleted:   map[string]int64{},
		cutoffs:   map[string]time.Time{},
		snapshots: map[string]map[uint]map[string]any{},
	}
}

func (m *mockSweepRepo) DeleteOlderThan(ctx context.Context, dt retention.DataType, cutoff time.Time) (int64, error) {
	m.cutoffs[dt.Name] = cutoff
	return m.deleted[dt.Name], nil
}

func (m *mockSweepRepo) SnapshotOlderThan(ctx context.Context, dt retention.DataType, tenantKey string, cutoff time.Time) (map[uint]map[string]any, error) {
	return m.snapshots[dt.Name], nil
}

func (m *mockSweepRepo) DeleteByIDs(ctx context.Context, dt retention.DataType, ids []uint) (int64, error) {
	return int64(len(ids)), nil
}

type mockArchiveRepo struct {
	records []*retention.ArchivedRecord
}

func (m *mockArchiveRepo) Create(ctx context.Context, a *retention.ArchivedRecord) error {
	m.records = append(m.records, a)
	return nil
}

func (m *mockArchiveRepo) GetByTenant(ctx context.Context, tenantKey string, limit int) ([]*retention.ArchivedRecord, error) {
	return m.records, nil
}

type mockDeletionRepo struct {
	request   *retention.DeletionRequest
	created   int
	updated   int
	createErr error
	overdue   []*retention.DeletionRequest
}

func (m *mockDeletionRepo) Create(ctx context.Context, r *retention.DeletionRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created++
	m.request = r
	return nil
}

func (m *mockDeletionRepo) Update(ctx context.Context, r *retention.DeletionRequest) error {
	m.updated++
	return nil
}

func (m *mockDeletionRepo) GetByRequestID(ctx context.Context, requestID string) (*retention.DeletionRequest, error) {
	if m.request == nil {
		return nil, retention.ErrDeletionNotFound
	}
	return m.request, nil
}

func (m *mockDeletionRepo) GetOverdue(ctx context.Context, now time.Time) ([]*retention.DeletionRequest, error) {
	return m.overdue, nil
}

type mockPurgeRepo struct {
	counts   map[string]int64
	runs     int
	lastUser string
	lastKey  string
	err      error
}

func (m *mockPurgeRepo) PurgeUserData(ctx context.Context, userID, tenantKey string) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.runs++
	m.lastUser = userID
	m.lastKey = tenantKey
	return m.counts, nil
}

type fixture struct {
	svc          *Service
	policyRepo   *mockPolicyRepo
	sweepRepo    *mockSweepRepo
	archiveRepo  *mockArchiveRepo
	deletionRepo *mockDeletionRepo
	purgeRepo    *mockPurgeRepo
	ctx          context.Context
}

func newFixture() *fixture {
	f := &fixture{
		policyRepo:   newMockPolicyRepo(),
		sweepRepo:    newMockSweepRepo(),
		archiveRepo:  &mockArchiveRepo{},
		deletionRepo: &mockDeletionRepo{},
		purgeRepo:    &mockPurgeRepo{counts: map[string]int64{"user_entitlements": 3}},
		ctx:          db.WithTx(context.Background(), &gorm.DB{}),
	}
	f.svc = NewService(f.policyRepo, f.sweepRepo, f.archiveRepo, f.deletionRepo, f.purgeRepo,
		db.NewTransactionManager(nil), testLogger(), 30)
	return f
}

func retentionCtx(t *testing.T) tenant.Context {
	t.Helper()
	tctx, err := tenant.NewContext("acme", "user-1")
	require.NoError(t, err)
	return tctx
}

func TestService_SetPolicy(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.svc.SetPolicy(f.ctx, "usage_counters", 10))
	policy := f.policyRepo.policies["usage_counters"]
	require.NotNil(t, policy)
	assert.Equal(t, 10, policy.RetentionDays())
}

func TestService_SetPolicy_UnknownDataType(t *testing.T) {
	f := newFixture()

	err := f.svc.SetPolicy(f.ctx, "session_tokens", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, f.policyRepo.policies)
}

func TestService_SetPolicy_NonPositiveWindow(t *testing.T) {
	f := newFixture()

	err := f.svc.SetPolicy(f.ctx, "usage_counters", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestService_PurgeExpiredLogs_SweepsOperationalOnly(t *testing.T) {
	f := newFixture()
	f.sweepRepo.deleted["usage_counters"] = 12
	f.sweepRepo.deleted["fraud_events"] = 3

	counts, err := f.svc.PurgeExpiredLogs(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(12), counts["usage_counters"])
	assert.Equal(t, int64(3), counts["fraud_events"])
	assert.NotContains(t, counts, "ai_cost_logs")
	assert.NotContains(t, counts, "consent_audit_logs")
}

func TestService_PurgeComplianceData_SweepsComplianceOnly(t *testing.T) {
	f := newFixture()
	f.sweepRepo.deleted["ai_cost_logs"] = 7

	counts, err := f.svc.PurgeComplianceData(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(7), counts["ai_cost_logs"])
	assert.Contains(t, counts, "consent_audit_logs")
	assert.NotContains(t, counts, "usage_counters")
}

func TestService_Purge_PolicyOverrideShortensWindow(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.svc.SetPolicy(f.ctx, "usage_counters", 10))

	_, err := f.svc.PurgeExpiredLogs(f.ctx)
	require.NoError(t, err)

	cutoff, ok := f.sweepRepo.cutoffs["usage_counters"]
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(-10*24*time.Hour), cutoff, time.Minute)

	// The default 365-day window still applies where no override exists.
	defaultCutoff := f.sweepRepo.cutoffs["fraud_events"]
	assert.WithinDuration(t, time.Now().Add(-365*24*time.Hour), defaultCutoff, time.Minute)
}

func TestService_ArchiveTenantData(t *testing.T) {
	f := newFixture()
	f.sweepRepo.snapshots["ai_cost_logs"] = map[uint]map[string]any{
		11: {"model": "veyra-large", "cost_cents": int64(36)},
		12: {"model": "veyra-small", "cost_cents": int64(4)},
	}

	counts, err := f.svc.ArchiveTenantData(f.ctx, "acme", []string{"ai_cost_logs", "offboarding_records"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), counts["ai_cost_logs"])
	// User-keyed types are skipped and reported as zero, not errored.
	assert.Equal(t, int64(0), counts["offboarding_records"])
	assert.Len(t, f.archiveRepo.records, 2)
	for _, record := range f.archiveRepo.records {
		assert.Equal(t, "acme", record.TenantKey())
		assert.Equal(t, "ai_cost_logs", record.DataTypeName())
	}
}

func TestService_ArchiveTenantData_InvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ArchiveTenantData(f.ctx, "", []string{"ai_cost_logs"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.svc.ArchiveTenantData(f.ctx, "acme", []string{"session_tokens"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, f.archiveRepo.records)
}

func TestService_RequestDeletion(t *testing.T) {
	f := newFixture()

	request, err := f.svc.RequestDeletion(f.ctx, retentionCtx(t), "req-1")
	require.NoError(t, err)
	require.NotNil(t, request)

	assert.Equal(t, retention.DeletionStatusPending, request.Status())
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), request.DueAt(), time.Minute)
}

func TestService_RequestDeletion_Duplicate(t *testing.T) {
	f := newFixture()
	f.deletionRepo.createErr = apperrors.NewConflictError("duplicate request")

	_, err := f.svc.RequestDeletion(f.ctx, retentionCtx(t), "req-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestService_CompleteDeletion(t *testing.T) {
	f := newFixture()
	request, err := retention.NewDeletionRequest("req-1", "user-1", "acme", 30)
	require.NoError(t, err)
	f.deletionRepo.request = request

	counts, err := f.svc.CompleteDeletion(f.ctx, "req-1")
	require.NoError(t, err)

	assert.Equal(t, f.purgeRepo.counts, counts)
	assert.Equal(t, retention.DeletionStatusCompleted, request.Status())
	// Scope comes from the stored request, never caller input.
	assert.Equal(t, "user-1", f.purgeRepo.lastUser)
	assert.Equal(t, "acme", f.purgeRepo.lastKey)
}

func TestService_CompleteDeletion_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CompleteDeletion(f.ctx, "req-missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Zero(t, f.purgeRepo.runs)
}

func TestService_CompleteDeletion_AlreadyCompleted(t *testing.T) {
	f := newFixture()
	request, err := retention.NewDeletionRequest("req-1", "user-1", "acme", 30)
	require.NoError(t, err)
	require.NoError(t, request.Start())
	require.NoError(t, request.Complete())
	f.deletionRepo.request = request

	_, err = f.svc.CompleteDeletion(f.ctx, "req-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.Zero(t, f.purgeRepo.runs)
}

func TestService_CompleteDeletion_PurgeFailureMarksFailed(t *testing.T) {
	f := newFixture()
	request, err := retention.NewDeletionRequest("req-1", "user-1", "acme", 30)
	require.NoError(t, err)
	f.deletionRepo.request = request
	f.purgeRepo.err = assert.AnError

	_, err = f.svc.CompleteDeletion(f.ctx, "req-1")
	require.Error(t, err)
	assert.Equal(t, retention.DeletionStatusFailed, request.Status())
}

func TestService_GetOverdueDeletions(t *testing.T) {
	f := newFixture()
	past := time.Now().Add(-40 * 24 * time.Hour)
	overdue, err := retention.ReconstructDeletionRequest(1, "req-1", "user-1", "acme",
		retention.DeletionStatusPending, past, past.Add(30*24*time.Hour), nil, "", past, past)
	require.NoError(t, err)
	f.deletionRepo.overdue = []*retention.DeletionRequest{overdue}

	requests, err := f.svc.GetOverdueDeletions(f.ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.True(t, requests[0].IsOverdue())
}
