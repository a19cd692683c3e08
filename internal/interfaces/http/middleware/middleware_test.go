package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	abuseApp "github.com/veyra-inc/veyra/internal/application/abuse"
	consentApp "github.com/veyra-inc/veyra/internal/application/consent"
	tenantApp "github.com/veyra-inc/veyra/internal/application/tenant"
	"github.com/veyra-inc/veyra/internal/domain/abuse"
	"github.com/veyra-inc/veyra/internal/domain/consent"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/domain/usage"
	"github.com/veyra-inc/veyra/internal/shared/constants"
	"github.com/veyra-inc/veyra/internal/shared/db"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockTenantRepo struct {
	tenant *tenant.Tenant
}

func (m *mockTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error { return nil }
func (m *mockTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error { return nil }

func (m *mockTenantRepo) GetByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	if m.tenant == nil || m.tenant.Key() != key {
		return nil, apperrors.NewNotFoundError("tenant not found")
	}
	return m.tenant, nil
}

func (m *mockTenantRepo) QuotaOverride(ctx context.Context, key, feature string) (int64, bool, error) {
	return 0, false, nil
}

func (m *mockTenantRepo) SetQuotaOverride(ctx context.Context, key, feature string, limit int64) error {
	return nil
}

type mockLockoutRepo struct {
	locked bool
}

func (m *mockLockoutRepo) Create(ctx context.Context, l *abuse.Lockout) error { return nil }
func (m *mockLockoutRepo) Update(ctx context.Context, l *abuse.Lockout) error { return nil }

func (m *mockLockoutRepo) GetActiveByUser(ctx context.Context, userID string) (*abuse.Lockout, error) {
	return nil, nil
}

func (m *mockLockoutRepo) IsLocked(ctx context.Context, userID string) (bool, error) {
	return m.locked, nil
}

type mockFraudRepo struct{}

func (m *mockFraudRepo) Create(ctx context.Context, e *abuse.FraudEvent) error { return nil }
func (m *mockFraudRepo) Update(ctx context.Context, e *abuse.FraudEvent) error { return nil }

func (m *mockFraudRepo) GetByID(ctx context.Context, id uint) (*abuse.FraudEvent, error) {
	return nil, apperrors.NewNotFoundError("fraud event not found")
}

func (m *mockFraudRepo) GetUnresolved(ctx context.Context, limit int) ([]*abuse.FraudEvent, error) {
	return nil, nil
}

func (m *mockFraudRepo) GetByUser(ctx context.Context, userID string) ([]*abuse.FraudEvent, error) {
	return nil, nil
}

type mockCostLogRepo struct{}

func (m *mockCostLogRepo) Append(ctx context.Context, entry *usage.CostLogEntry) error { return nil }

func (m *mockCostLogRepo) CountByUserSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	return 0, nil
}

func (m *mockCostLogRepo) GetByUser(ctx context.Context, userID string) ([]*usage.CostLogEntry, error) {
	return nil, nil
}

func (m *mockCostLogRepo) SumCostCentsByTenant(ctx context.Context, tenantKey string, from, to time.Time) (int64, error) {
	return 0, nil
}

type mockCeilings struct{}

func (m *mockCeilings) EffectiveCeiling(ctx context.Context, tenantKey, feature string) (int64, error) {
	return usage.Unlimited, nil
}

func (m *mockCeilings) GetCurrentUsage(ctx context.Context, tenantKey, feature string) (int64, error) {
	return 0, nil
}

type mockConsentRepo struct {
	current  map[consent.DocType]string
	consents map[string]*consent.UserConsent
}

func newMockConsentRepo() *mockConsentRepo {
	return &mockConsentRepo{
		current:  map[consent.DocType]string{},
		consents: map[string]*consent.UserConsent{},
	}
}

func (m *mockConsentRepo) SetCurrentVersion(ctx context.Context, docType consent.DocType, version string) error {
	m.current[docType] = version
	return nil
}

func (m *mockConsentRepo) GetCurrentVersions(ctx context.Context) (map[consent.DocType]string, error) {
	return m.current, nil
}

func (m *mockConsentRepo) GetConsent(ctx context.Context, userID string, docType consent.DocType) (*consent.UserConsent, error) {
	return m.consents[userID+"/"+docType.String()], nil
}

func (m *mockConsentRepo) UpsertConsent(ctx context.Context, c *consent.UserConsent) error {
	m.consents[c.UserID()+"/"+c.DocType().String()] = c
	return nil
}

func (m *mockConsentRepo) AppendAudit(ctx context.Context, a *consent.AuditEntry) error { return nil }

func (m *mockConsentRepo) GetAuditTrail(ctx context.Context, userID string, docType consent.DocType) ([]*consent.AuditEntry, error) {
	return nil, nil
}

func activeTenant(t *testing.T) *tenant.Tenant {
	t.Helper()
	tn, err := tenant.ReconstructTenant(1, "acme", "Acme", "pro", true, time.Now(), time.Now())
	require.NoError(t, err)
	return tn
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestTenantContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := tenantApp.NewService(&mockTenantRepo{tenant: activeTenant(t)}, testLogger())

	router := gin.New()
	router.GET("/ping", TenantContext(svc, testLogger()), func(c *gin.Context) {
		tctx, ok := GetTenantContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": tctx.UserID})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderXTenantKey, "acme")
	req.Header.Set(constants.HeaderXUserID, "user-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestTenantContext_MissingHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := tenantApp.NewService(&mockTenantRepo{tenant: activeTenant(t)}, testLogger())

	router := gin.New()
	router.GET("/ping", TenantContext(svc, testLogger()), okHandler)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderXTenantKey, "acme")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTenantContext_UnknownTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := tenantApp.NewService(&mockTenantRepo{}, testLogger())

	router := gin.New()
	router.GET("/ping", TenantContext(svc, testLogger()), okHandler)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderXTenantKey, "ghost")
	req.Header.Set(constants.HeaderXUserID, "user-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantContext_DeactivatedTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tn := activeTenant(t)
	tn.Deactivate()
	svc := tenantApp.NewService(&mockTenantRepo{tenant: tn}, testLogger())

	router := gin.New()
	router.GET("/ping", TenantContext(svc, testLogger()), okHandler)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderXTenantKey, "acme")
	req.Header.Set(constants.HeaderXUserID, "user-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func lockoutRouter(t *testing.T, locked bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tenantSvc := tenantApp.NewService(&mockTenantRepo{tenant: activeTenant(t)}, testLogger())
	abuseSvc := abuseApp.NewService(&mockFraudRepo{}, &mockLockoutRepo{locked: locked}, &mockCostLogRepo{}, &mockCeilings{}, testLogger())

	router := gin.New()
	router.GET("/ping", TenantContext(tenantSvc, testLogger()), LockoutCheck(abuseSvc, testLogger()), okHandler)
	return router
}

func TestLockoutCheck(t *testing.T) {
	tests := []struct {
		name     string
		locked   bool
		wantCode int
	}{
		{"unlocked user passes", false, http.StatusOK},
		{"locked user rejected", true, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := lockoutRouter(t, tt.locked)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set(constants.HeaderXTenantKey, "acme")
			req.Header.Set(constants.HeaderXUserID, "user-1")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func consentRouter(t *testing.T, repo *mockConsentRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tenantSvc := tenantApp.NewService(&mockTenantRepo{tenant: activeTenant(t)}, testLogger())
	consentSvc := consentApp.NewService(repo, db.NewTransactionManager(nil), testLogger())

	router := gin.New()
	router.GET("/ping", TenantContext(tenantSvc, testLogger()), ConsentGate(consentSvc, testLogger()), okHandler)
	return router
}

func TestConsentGate(t *testing.T) {
	repo := newMockConsentRepo()
	router := consentRouter(t, repo)

	makeRequest := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(constants.HeaderXTenantKey, "acme")
		req.Header.Set(constants.HeaderXUserID, "user-1")
		router.ServeHTTP(w, req)
		return w
	}

	// No versions configured: the gate is open.
	assert.Equal(t, http.StatusOK, makeRequest().Code)

	repo.current[consent.DocTypeTerms] = "2026-01"
	blocked := makeRequest()
	assert.Equal(t, http.StatusUnavailableForLegalReasons, blocked.Code)
	assert.Contains(t, blocked.Body.String(), string(apperrors.ErrorTypeLegalHold))

	accepted, err := consent.NewUserConsent("user-1", "acme", consent.DocTypeTerms, "2026-01")
	require.NoError(t, err)
	require.NoError(t, repo.UpsertConsent(context.Background(), accepted))
	assert.Equal(t, http.StatusOK, makeRequest().Code)

	// A newer published version closes the gate again.
	repo.current[consent.DocTypeTerms] = "2026-02"
	assert.Equal(t, http.StatusUnavailableForLegalReasons, makeRequest().Code)
}

func TestGetTenantContext_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetTenantContext(c)
	assert.False(t, ok)
}
