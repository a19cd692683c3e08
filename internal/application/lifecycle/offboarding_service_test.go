package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
)

type mockOffboardingRepo struct {
	active  *lifecycle.Offboarding
	history []*lifecycle.Offboarding
	created int
}

func (m *mockOffboardingRepo) Create(ctx context.Context, o *lifecycle.Offboarding) error {
	m.created++
	m.active = o
	m.history = append([]*lifecycle.Offboarding{o}, m.history...)
	return nil
}

func (m *mockOffboardingRepo) Update(ctx context.Context, o *lifecycle.Offboarding) error {
	if !o.IsActive() {
		m.active = nil
	}
	return nil
}

func (m *mockOffboardingRepo) GetActiveByUser(ctx context.Context, userID string) (*lifecycle.Offboarding, error) {
	return m.active, nil
}

func (m *mockOffboardingRepo) GetHistoryByUser(ctx context.Context, userID string) ([]*lifecycle.Offboarding, error) {
	return m.history, nil
}

func offboardingCtx(t *testing.T) tenant.Context {
	t.Helper()
	tctx, err := tenant.NewContext("acme", "user-1")
	require.NoError(t, err)
	return tctx
}

func TestOffboardingService_Initiate(t *testing.T) {
	repo := &mockOffboardingRepo{}
	svc := NewOffboardingService(repo, testLogger())

	record, err := svc.Initiate(context.Background(), offboardingCtx(t), lifecycle.ReasonTooExpensive, "switched to annual invoicing elsewhere")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, lifecycle.ReasonTooExpensive, record.Reason())
	assert.True(t, record.IsActive())
	assert.Nil(t, record.CompletedAt())
}

func TestOffboardingService_Initiate_InvalidReason(t *testing.T) {
	svc := NewOffboardingService(&mockOffboardingRepo{}, testLogger())

	_, err := svc.Initiate(context.Background(), offboardingCtx(t), lifecycle.OffboardingReason("bored"), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestOffboardingService_Initiate_AlreadyInProgress(t *testing.T) {
	repo := &mockOffboardingRepo{}
	svc := NewOffboardingService(repo, testLogger())
	ctx := context.Background()

	_, err := svc.Initiate(ctx, offboardingCtx(t), lifecycle.ReasonNotUseful, "")
	require.NoError(t, err)

	_, err = svc.Initiate(ctx, offboardingCtx(t), lifecycle.ReasonOther, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.Equal(t, 1, repo.created)
}

func TestOffboardingService_Complete(t *testing.T) {
	repo := &mockOffboardingRepo{}
	svc := NewOffboardingService(repo, testLogger())
	ctx := context.Background()

	_, err := svc.Initiate(ctx, offboardingCtx(t), lifecycle.ReasonSwitchingProvider, "")
	require.NoError(t, err)

	completed, err := svc.Complete(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt())
	assert.False(t, completed.IsActive())

	// With the record completed the user may offboard again later.
	_, err = svc.Initiate(ctx, offboardingCtx(t), lifecycle.ReasonOther, "came back, leaving again")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.created)
}

func TestOffboardingService_Complete_NothingActive(t *testing.T) {
	svc := NewOffboardingService(&mockOffboardingRepo{}, testLogger())

	_, err := svc.Complete(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestOffboardingService_History(t *testing.T) {
	repo := &mockOffboardingRepo{}
	svc := NewOffboardingService(repo, testLogger())
	ctx := context.Background()

	_, err := svc.Initiate(ctx, offboardingCtx(t), lifecycle.ReasonMissingFeatures, "no SSO")
	require.NoError(t, err)
	_, err = svc.Complete(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.Initiate(ctx, offboardingCtx(t), lifecycle.ReasonOther, "")
	require.NoError(t, err)

	records, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, lifecycle.ReasonOther, records[0].Reason())
}
