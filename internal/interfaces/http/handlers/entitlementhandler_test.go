package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entitlementApp "github.com/veyra-inc/veyra/internal/application/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/constants"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockEntitlementRepo struct {
	rows map[string]*entitlement.Entitlement
}

func newMockEntitlementRepo() *mockEntitlementRepo {
	return &mockEntitlementRepo{rows: map[string]*entitlement.Entitlement{}}
}

func (m *mockEntitlementRepo) key(userID, tenantKey string, feature entitlement.Feature) string {
	return userID + "/" + tenantKey + "/" + feature.String()
}

func (m *mockEntitlementRepo) Create(ctx context.Context, e *entitlement.Entitlement) error {
	m.rows[m.key(e.UserID(), e.TenantKey(), e.Feature())] = e
	return nil
}

func (m *mockEntitlementRepo) Update(ctx context.Context, e *entitlement.Entitlement) error {
	return nil
}

func (m *mockEntitlementRepo) GetByUserAndFeature(ctx context.Context, userID, tenantKey string, feature entitlement.Feature) (*entitlement.Entitlement, error) {
	e, ok := m.rows[m.key(userID, tenantKey, feature)]
	if !ok {
		return nil, entitlement.ErrEntitlementNotFound
	}
	return e, nil
}

func (m *mockEntitlementRepo) GetByUser(ctx context.Context, userID, tenantKey string) ([]*entitlement.Entitlement, error) {
	var out []*entitlement.Entitlement
	for _, e := range m.rows {
		if e.UserID() == userID && e.TenantKey() == tenantKey {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntitlementRepo) HasActive(ctx context.Context, userID, tenantKey string, feature entitlement.Feature) (bool, error) {
	e, ok := m.rows[m.key(userID, tenantKey, feature)]
	return ok && e.IsGranted(), nil
}

func (m *mockEntitlementRepo) RevokeAllByUser(ctx context.Context, userID, tenantKey string) (int64, error) {
	var revoked int64
	for _, e := range m.rows {
		if e.UserID() == userID && e.TenantKey() == tenantKey && e.IsGranted() {
			e.Revoke()
			revoked++
		}
	}
	return revoked, nil
}

// seedIdentity stands in for the tenant resolution middleware on routes
// that expect an identity to be present.
func seedIdentity(t *testing.T) gin.HandlerFunc {
	t.Helper()
	tctx, err := tenant.NewContext("acme", "user-1")
	require.NoError(t, err)
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyTenantContext, tctx)
		c.Next()
	}
}

func newEntitlementRouter(t *testing.T) (*gin.Engine, *mockEntitlementRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMockEntitlementRepo()
	handler := NewEntitlementHandler(entitlementApp.NewService(repo, testLogger()), testLogger())

	router := gin.New()
	me := router.Group("/users/me", seedIdentity(t))
	me.GET("/entitlements", handler.GetMyEntitlements)
	me.GET("/entitlements/:feature", handler.CheckFeature)
	router.POST("/admin/entitlements", handler.Grant)
	router.DELETE("/admin/entitlements", handler.Revoke)
	return router, repo
}

func seedGrant(t *testing.T, repo *mockEntitlementRepo, feature entitlement.Feature) {
	t.Helper()
	e, err := entitlement.NewEntitlement("user-1", "acme", feature, entitlement.SourceTypeSubscription)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), e))
}

func TestEntitlementHandler_GetMyEntitlements(t *testing.T) {
	router, repo := newEntitlementRouter(t)
	seedGrant(t, repo, entitlement.FeatureAICalls)
	seedGrant(t, repo, entitlement.FeatureExports)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/me/entitlements", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Entitlements []entitlementResponse `json:"entitlements"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Entitlements, 2)
}

func TestEntitlementHandler_GetMyEntitlements_NoIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEntitlementHandler(entitlementApp.NewService(newMockEntitlementRepo(), testLogger()), testLogger())

	router := gin.New()
	router.GET("/users/me/entitlements", handler.GetMyEntitlements)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/me/entitlements", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEntitlementHandler_CheckFeature(t *testing.T) {
	router, repo := newEntitlementRouter(t)
	seedGrant(t, repo, entitlement.FeatureAICalls)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/me/entitlements/ai_calls", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Feature string `json:"feature"`
			Granted bool   `json:"granted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ai_calls", resp.Data.Feature)
	assert.True(t, resp.Data.Granted)
}

func TestEntitlementHandler_CheckFeature_Unknown(t *testing.T) {
	router, _ := newEntitlementRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/me/entitlements/teleport", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntitlementHandler_Grant(t *testing.T) {
	router, repo := newEntitlementRouter(t)

	body, _ := json.Marshal(gin.H{
		"tenant_key": "acme",
		"user_id":    "user-1",
		"feature":    "exports",
		"source":     "direct",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/entitlements", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	has, err := repo.HasActive(context.Background(), "user-1", "acme", entitlement.FeatureExports)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestEntitlementHandler_Grant_InvalidRequests(t *testing.T) {
	router, _ := newEntitlementRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing fields", gin.H{"tenant_key": "acme"}},
		{"unknown feature", gin.H{"tenant_key": "acme", "user_id": "user-1", "feature": "teleport", "source": "direct"}},
		{"unknown source", gin.H{"tenant_key": "acme", "user_id": "user-1", "feature": "exports", "source": "lottery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/admin/entitlements", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestEntitlementHandler_Revoke(t *testing.T) {
	router, repo := newEntitlementRouter(t)
	seedGrant(t, repo, entitlement.FeatureExports)

	body, _ := json.Marshal(gin.H{
		"tenant_key": "acme",
		"user_id":    "user-1",
		"feature":    "exports",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/admin/entitlements", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	has, err := repo.HasActive(context.Background(), "user-1", "acme", entitlement.FeatureExports)
	require.NoError(t, err)
	assert.False(t, has)
}
