package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
)

func newTrialService(trialRepo *mockTrialRepo, entRepo *mockEntitlementRepo, notifier *mockNotifier) (*TrialService, *mockNotifier, func() (tctx tenant.Context)) {
	if notifier == nil {
		notifier = &mockNotifier{}
	}
	txManager, _ := testTx()
	svc := NewTrialService(trialRepo, entRepo, txManager, notifier, testLogger(), 14)
	return svc, notifier, func() tenant.Context {
		tctx, _ := tenant.NewContext("acme", "user-1")
		return tctx
	}
}

func TestTrialService_StartTrial(t *testing.T) {
	trialRepo := &mockTrialRepo{}
	entRepo := &mockEntitlementRepo{}
	svc, _, mkCtx := newTrialService(trialRepo, entRepo, nil)
	_, ctx := testTx()

	trial, err := svc.StartTrial(ctx, mkCtx())
	require.NoError(t, err)
	require.NotNil(t, trial)

	assert.Equal(t, lifecycle.TrialStatusActive, trial.Status())
	assert.Equal(t, 1, trialRepo.created)
	// Every feature gets a trial-sourced grant in the same transaction.
	assert.Len(t, entRepo.grants, len(entitlement.AllFeatures()))
	for _, grant := range entRepo.grants {
		assert.Equal(t, entitlement.SourceTypeTrial, grant.Source())
	}
}

func TestTrialService_StartTrial_SecondTrialConflicts(t *testing.T) {
	existing, err := lifecycle.NewTrial("user-1", "acme", 14)
	require.NoError(t, err)
	require.NoError(t, existing.Cancel())

	trialRepo := &mockTrialRepo{trial: existing}
	entRepo := &mockEntitlementRepo{}
	svc, _, mkCtx := newTrialService(trialRepo, entRepo, nil)
	_, ctx := testTx()

	// Even a resolved trial blocks a new one; there is no renewal path.
	_, err = svc.StartTrial(ctx, mkCtx())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.Zero(t, trialRepo.created)
	assert.Empty(t, entRepo.grants)
}

func TestTrialService_StartTrial_LostCreateRace(t *testing.T) {
	trialRepo := &mockTrialRepo{createErr: apperrors.NewConflictError("duplicate trial")}
	svc, _, mkCtx := newTrialService(trialRepo, &mockEntitlementRepo{}, nil)
	_, ctx := testTx()

	_, err := svc.StartTrial(ctx, mkCtx())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestTrialService_IsTrialActive(t *testing.T) {
	t.Run("no trial", func(t *testing.T) {
		svc, _, _ := newTrialService(&mockTrialRepo{}, &mockEntitlementRepo{}, nil)
		_, ctx := testTx()

		active, err := svc.IsTrialActive(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("live trial", func(t *testing.T) {
		trial, _ := lifecycle.NewTrial("user-1", "acme", 14)
		svc, _, _ := newTrialService(&mockTrialRepo{trial: trial}, &mockEntitlementRepo{}, nil)
		_, ctx := testTx()

		active, err := svc.IsTrialActive(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("active status past end date", func(t *testing.T) {
		past := time.Now().Add(-48 * time.Hour)
		trial, err := lifecycle.ReconstructTrial(1, "user-1", "acme",
			lifecycle.TrialStatusActive, past.Add(-14*24*time.Hour), past, nil, past, past)
		require.NoError(t, err)

		svc, _, _ := newTrialService(&mockTrialRepo{trial: trial}, &mockEntitlementRepo{}, nil)
		_, ctx := testTx()

		active, err := svc.IsTrialActive(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, active)
	})
}

func TestTrialService_ExpireTrial_RevokesGrants(t *testing.T) {
	trial, _ := lifecycle.NewTrial("user-1", "acme", 14)
	trialRepo := &mockTrialRepo{trial: trial}
	entRepo := &mockEntitlementRepo{revoked: 4}
	svc, _, _ := newTrialService(trialRepo, entRepo, nil)
	_, ctx := testTx()

	require.NoError(t, svc.ExpireTrial(ctx, "user-1"))
	assert.Equal(t, lifecycle.TrialStatusExpired, trial.Status())
	assert.Equal(t, 1, entRepo.revokeRuns)
	assert.Equal(t, 1, trialRepo.updated)
}

func TestTrialService_ConvertTrial_Terminal(t *testing.T) {
	trial, _ := lifecycle.NewTrial("user-1", "acme", 14)
	svc, _, _ := newTrialService(&mockTrialRepo{trial: trial}, &mockEntitlementRepo{}, nil)
	_, ctx := testTx()

	require.NoError(t, svc.ConvertTrial(ctx, "user-1"))

	err := svc.CancelTrial(ctx, "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestTrialService_ScanExpiring(t *testing.T) {
	first, _ := lifecycle.NewTrial("user-1", "acme", 1)
	second, _ := lifecycle.NewTrial("user-2", "acme", 2)
	trialRepo := &mockTrialRepo{expiring: []*lifecycle.Trial{first, second}}
	notifier := &mockNotifier{}
	svc, _, _ := newTrialService(trialRepo, &mockEntitlementRepo{}, notifier)
	_, ctx := testTx()

	count, err := svc.ScanExpiring(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, notifier.trialWarnings)
}

func TestTrialService_ScanExpiring_NotifierFailureIsSwallowed(t *testing.T) {
	trial, _ := lifecycle.NewTrial("user-1", "acme", 1)
	notifier := &mockNotifier{err: assert.AnError}
	svc, _, _ := newTrialService(&mockTrialRepo{expiring: []*lifecycle.Trial{trial}}, &mockEntitlementRepo{}, notifier)
	_, ctx := testTx()

	count, err := svc.ScanExpiring(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
