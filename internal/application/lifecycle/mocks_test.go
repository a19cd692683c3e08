package lifecycle

import (
	"context"
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/db"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testTx returns a transaction manager plus a context already carrying a
// transaction, so RunInTransaction joins it and runs the callback inline
// against the mocks.
func testTx() (*db.TransactionManager, context.Context) {
	return db.NewTransactionManager(nil), db.WithTx(context.Background(), &gorm.DB{})
}

type mockTrialRepo struct {
	trial     *lifecycle.Trial
	expiring  []*lifecycle.Trial
	createErr error
	created   int
	updated   int
}

func (m *mockTrialRepo) Create(ctx context.Context, t *lifecycle.Trial) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created++
	m.trial = t
	return nil
}

func (m *mockTrialRepo) Update(ctx context.Context, t *lifecycle.Trial) error {
	m.updated++
	m.trial = t
	return nil
}

func (m *mockTrialRepo) GetByUser(ctx context.Context, userID string) (*lifecycle.Trial, error) {
	if m.trial == nil {
		return nil, lifecycle.ErrTrialNotFound
	}
	return m.trial, nil
}

func (m *mockTrialRepo) GetExpiring(ctx context.Context, window time.Duration) ([]*lifecycle.Trial, error) {
	return m.expiring, nil
}

type mockEntitlementRepo struct {
	grants     []*entitlement.Entitlement
	revoked    int64
	revokeErr  error
	createErr  error
	hasActive  bool
	hasErr     error
	revokeRuns int
}

func (m *mockEntitlementRepo) Create(ctx context.Context, e *entitlement.Entitlement) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.grants = append(m.grants, e)
	return nil
}

func (m *mockEntitlementRepo) Update(ctx context.Context, e *entitlement.Entitlement) error {
	return nil
}

func (m *mockEntitlementRepo) GetByUserAndFeature(ctx context.Context, userID, tenantKey string, feature entitlement.Feature) (*entitlement.Entitlement, error) {
	return nil, entitlement.ErrEntitlementNotFound
}

func (m *mockEntitlementRepo) GetByUser(ctx context.Context, userID, tenantKey string) ([]*entitlement.Entitlement, error) {
	return m.grants, nil
}

func (m *mockEntitlementRepo) HasActive(ctx context.Context, userID, tenantKey string, feature entitlement.Feature) (bool, error) {
	return m.hasActive, m.hasErr
}

func (m *mockEntitlementRepo) RevokeAllByUser(ctx context.Context, userID, tenantKey string) (int64, error) {
	if m.revokeErr != nil {
		return 0, m.revokeErr
	}
	m.revokeRuns++
	return m.revoked, nil
}

type mockNotifier struct {
	closureNotices int
	trialWarnings  int
	err            error
}

func (m *mockNotifier) SendClosureNotice(userID string, purgeAt time.Time) error {
	m.closureNotices++
	return m.err
}

func (m *mockNotifier) SendTrialExpiryWarning(userID string, endAt time.Time) error {
	m.trialWarnings++
	return m.err
}

type mockEvents struct {
	emitted []string
	err     error
}

func (m *mockEvents) Emit(name string, fields map[string]any) error {
	m.emitted = append(m.emitted, name)
	return m.err
}

type mockActivationRepo struct {
	events    map[string]*lifecycle.ActivationEvent
	createErr error
	created   int
}

func newMockActivationRepo() *mockActivationRepo {
	return &mockActivationRepo{events: map[string]*lifecycle.ActivationEvent{}}
}

func (m *mockActivationRepo) GetByUserAndEvent(ctx context.Context, userID, eventName string) (*lifecycle.ActivationEvent, error) {
	return m.events[userID+"/"+eventName], nil
}

func (m *mockActivationRepo) Create(ctx context.Context, e *lifecycle.ActivationEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created++
	m.events[e.UserID()+"/"+e.EventName()] = e
	return nil
}

func (m *mockActivationRepo) IsActivated(ctx context.Context, userID string) (bool, error) {
	for key := range m.events {
		if len(key) > len(userID) && key[:len(userID)] == userID {
			return true, nil
		}
	}
	return false, nil
}

type mockClosureRepo struct {
	pending *lifecycle.Closure
	latest  *lifecycle.Closure
	due     []*lifecycle.Closure
	created int
	updated int
}

func (m *mockClosureRepo) Create(ctx context.Context, c *lifecycle.Closure) error {
	m.created++
	m.pending = c
	m.latest = c
	return nil
}

func (m *mockClosureRepo) Update(ctx context.Context, c *lifecycle.Closure) error {
	m.updated++
	m.latest = c
	if !c.IsPending() {
		m.pending = nil
	}
	return nil
}

func (m *mockClosureRepo) GetPendingByUser(ctx context.Context, userID string) (*lifecycle.Closure, error) {
	return m.pending, nil
}

func (m *mockClosureRepo) GetLatestByUser(ctx context.Context, userID string) (*lifecycle.Closure, error) {
	if m.latest == nil {
		return nil, lifecycle.ErrClosureNotFound
	}
	return m.latest, nil
}

func (m *mockClosureRepo) GetPendingPurges(ctx context.Context) ([]*lifecycle.Closure, error) {
	return m.due, nil
}

type mockPurgeRepo struct {
	counts   map[string]int64
	err      error
	runs     int
	lastUser string
	lastKey  string
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

type mockTenantRepo struct {
	tenant  *tenant.Tenant
	updated int
}

func (m *mockTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error { return nil }

func (m *mockTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error {
	m.updated++
	m.tenant = t
	return nil
}

func (m *mockTenantRepo) GetByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	return m.tenant, nil
}

func (m *mockTenantRepo) QuotaOverride(ctx context.Context, key, feature string) (int64, bool, error) {
	return 0, false, nil
}

func (m *mockTenantRepo) SetQuotaOverride(ctx context.Context, key, feature string, limit int64) error {
	return nil
}
