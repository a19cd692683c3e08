package abuse

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-inc/veyra/internal/domain/abuse"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/domain/usage"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockFraudRepo struct {
	events []*abuse.FraudEvent
	byID   map[uint]*abuse.FraudEvent
}

func newMockFraudRepo() *mockFraudRepo {
	return &mockFraudRepo{byID: map[uint]*abuse.FraudEvent{}}
}

func (m *mockFraudRepo) Create(ctx context.Context, e *abuse.FraudEvent) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockFraudRepo) Update(ctx context.Context, e *abuse.FraudEvent) error { return nil }

func (m *mockFraudRepo) GetByID(ctx context.Context, id uint) (*abuse.FraudEvent, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("fraud event not found")
	}
	return e, nil
}

func (m *mockFraudRepo) GetUnresolved(ctx context.Context, limit int) ([]*abuse.FraudEvent, error) {
	return m.events, nil
}

func (m *mockFraudRepo) GetByUser(ctx context.Context, userID string) ([]*abuse.FraudEvent, error) {
	return m.events, nil
}

type mockLockoutRepo struct {
	active    *abuse.Lockout
	createErr error
}

func (m *mockLockoutRepo) Create(ctx context.Context, l *abuse.Lockout) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.active = l
	return nil
}

func (m *mockLockoutRepo) Update(ctx context.Context, l *abuse.Lockout) error {
	if !l.IsActive() {
		m.active = nil
	}
	return nil
}

func (m *mockLockoutRepo) GetActiveByUser(ctx context.Context, userID string) (*abuse.Lockout, error) {
	return m.active, nil
}

func (m *mockLockoutRepo) IsLocked(ctx context.Context, userID string) (bool, error) {
	return m.active != nil, nil
}

type mockCostLogRepo struct {
	count int64
}

func (m *mockCostLogRepo) Append(ctx context.Context, entry *usage.CostLogEntry) error { return nil }

func (m *mockCostLogRepo) CountByUserSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	return m.count, nil
}

func (m *mockCostLogRepo) GetByUser(ctx context.Context, userID string) ([]*usage.CostLogEntry, error) {
	return nil, nil
}

func (m *mockCostLogRepo) SumCostCentsByTenant(ctx context.Context, tenantKey string, from, to time.Time) (int64, error) {
	return 0, nil
}

type mockCeilings struct {
	ceiling int64
	count   int64
}

func (m *mockCeilings) EffectiveCeiling(ctx context.Context, tenantKey, feature string) (int64, error) {
	return m.ceiling, nil
}

func (m *mockCeilings) GetCurrentUsage(ctx context.Context, tenantKey, feature string) (int64, error) {
	return m.count, nil
}

func abuseCtx(t *testing.T) tenant.Context {
	t.Helper()
	tctx, err := tenant.NewContext("acme", "user-1")
	require.NoError(t, err)
	return tctx
}

func TestService_DetectAIAbuse(t *testing.T) {
	tests := []struct {
		name       string
		count      int64
		threshold  int64
		wantFlag   bool
		wantEvents int
	}{
		{"under threshold", 100, 500, false, 0},
		{"at threshold", 500, 500, false, 0},
		{"over threshold", 501, 500, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fraudRepo := newMockFraudRepo()
			svc := NewService(fraudRepo, &mockLockoutRepo{}, &mockCostLogRepo{count: tt.count}, &mockCeilings{}, testLogger())

			flagged, err := svc.DetectAIAbuse(context.Background(), abuseCtx(t), time.Hour, tt.threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFlag, flagged)
			assert.Len(t, fraudRepo.events, tt.wantEvents)

			if tt.wantEvents > 0 {
				assert.Equal(t, abuse.EventTypeAIAbuse, fraudRepo.events[0].EventType())
				assert.Equal(t, abuse.SeverityHigh, fraudRepo.events[0].Severity())
			}
		})
	}
}

func TestService_DetectAIAbuse_InvalidInput(t *testing.T) {
	svc := NewService(newMockFraudRepo(), &mockLockoutRepo{}, &mockCostLogRepo{}, &mockCeilings{}, testLogger())

	_, err := svc.DetectAIAbuse(context.Background(), abuseCtx(t), 0, 500)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.DetectAIAbuse(context.Background(), abuseCtx(t), time.Hour, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestService_DetectAPIAbuse_UnlimitedNeverFlags(t *testing.T) {
	fraudRepo := newMockFraudRepo()
	ceilings := &mockCeilings{ceiling: usage.Unlimited, count: 1 << 40}
	svc := NewService(fraudRepo, &mockLockoutRepo{}, &mockCostLogRepo{}, ceilings, testLogger())

	flagged, err := svc.DetectAPIAbuse(context.Background(), abuseCtx(t), "ai_calls", 3)
	require.NoError(t, err)
	assert.False(t, flagged)
	assert.Empty(t, fraudRepo.events)
}

func TestService_DetectAPIAbuse_ProjectionOverCeiling(t *testing.T) {
	// Any projection of count/day*30 with this count dwarfs 3x a ceiling
	// of 100 regardless of the day of month.
	fraudRepo := newMockFraudRepo()
	ceilings := &mockCeilings{ceiling: 100, count: 100000}
	svc := NewService(fraudRepo, &mockLockoutRepo{}, &mockCostLogRepo{}, ceilings, testLogger())

	flagged, err := svc.DetectAPIAbuse(context.Background(), abuseCtx(t), "ai_calls", 3)
	require.NoError(t, err)
	assert.True(t, flagged)
	require.Len(t, fraudRepo.events, 1)
	assert.Equal(t, abuse.EventTypeAPIAbuse, fraudRepo.events[0].EventType())
}

func TestService_DetectAPIAbuse_UnderProjection(t *testing.T) {
	fraudRepo := newMockFraudRepo()
	ceilings := &mockCeilings{ceiling: 1000, count: 0}
	svc := NewService(fraudRepo, &mockLockoutRepo{}, &mockCostLogRepo{}, ceilings, testLogger())

	flagged, err := svc.DetectAPIAbuse(context.Background(), abuseCtx(t), "ai_calls", 3)
	require.NoError(t, err)
	assert.False(t, flagged)
}

func TestService_LockAccount(t *testing.T) {
	lockoutRepo := &mockLockoutRepo{}
	svc := NewService(newMockFraudRepo(), lockoutRepo, &mockCostLogRepo{}, &mockCeilings{}, testLogger())

	lockout, err := svc.LockAccount(context.Background(), abuseCtx(t), "chargeback fraud")
	require.NoError(t, err)
	require.NotNil(t, lockout)
	assert.Equal(t, "chargeback fraud", lockout.Reason())

	// A second lock on the same user is a caller bug, not an upsert.
	_, err = svc.LockAccount(context.Background(), abuseCtx(t), "second lock")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestService_UnlockAccount(t *testing.T) {
	lockoutRepo := &mockLockoutRepo{}
	svc := NewService(newMockFraudRepo(), lockoutRepo, &mockCostLogRepo{}, &mockCeilings{}, testLogger())

	// Nothing locked is a no-op, not a failure.
	unlocked, err := svc.UnlockAccount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, unlocked)

	_, err = svc.LockAccount(context.Background(), abuseCtx(t), "chargeback fraud")
	require.NoError(t, err)

	unlocked, err = svc.UnlockAccount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, unlocked)

	locked, err := svc.IsAccountLocked(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestService_ResolveEvent(t *testing.T) {
	fraudRepo := newMockFraudRepo()
	event, err := abuse.NewFraudEvent("user-1", "acme", abuse.EventTypeAIAbuse, abuse.SeverityHigh, nil)
	require.NoError(t, err)
	require.NoError(t, event.SetID(7))
	fraudRepo.byID[7] = event

	svc := NewService(fraudRepo, &mockLockoutRepo{}, &mockCostLogRepo{}, &mockCeilings{}, testLogger())

	require.NoError(t, svc.ResolveEvent(context.Background(), 7))
	assert.True(t, event.IsResolved())

	err = svc.ResolveEvent(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}
