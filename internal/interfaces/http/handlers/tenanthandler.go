package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tenantApp "github.com/veyra-inc/veyra/internal/application/tenant"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// TenantHandler handles HTTP requests for tenant administration
type TenantHandler struct {
	service *tenantApp.Service
	logger  logger.Interface
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(service *tenantApp.Service, logger logger.Interface) *TenantHandler {
	return &TenantHandler{
		service: service,
		logger:  logger,
	}
}

type registerTenantRequest struct {
	Key      string `json:"key" binding:"required"`
	Name     string `json:"name" binding:"required"`
	PlanTier string `json:"plan_tier" binding:"required"`
}

type tenantResponse struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	PlanTier string `json:"plan_tier"`
	Active   bool   `json:"active"`
}

func toTenantResponse(t *tenant.Tenant) tenantResponse {
	return tenantResponse{
		Key:      t.Key(),
		Name:     t.Name(),
		PlanTier: t.PlanTier(),
		Active:   t.IsActive(),
	}
}

// Register handles POST /admin/tenants
func (h *TenantHandler) Register(c *gin.Context) {
	var req registerTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	t, err := h.service.Register(c.Request.Context(), req.Key, req.Name, req.PlanTier)
	if err != nil {
		h.logger.Errorw("failed to register tenant", "error", err, "key", req.Key)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toTenantResponse(t), "tenant registered")
}

// Get handles GET /admin/tenants/:key
func (h *TenantHandler) Get(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toTenantResponse(t))
}

type changePlanRequest struct {
	PlanTier string `json:"plan_tier" binding:"required"`
}

// ChangePlan handles PUT /admin/tenants/:key/plan
func (h *TenantHandler) ChangePlan(c *gin.Context) {
	var req changePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	key := c.Param("key")
	if err := h.service.ChangePlanTier(c.Request.Context(), key, req.PlanTier); err != nil {
		h.logger.Errorw("failed to change plan tier", "error", err, "key", key)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "plan tier updated", nil)
}

type quotaOverrideRequest struct {
	Feature string `json:"feature" binding:"required"`
	Limit   int64  `json:"limit" binding:"required"`
}

// SetQuotaOverride handles PUT /admin/tenants/:key/quota-overrides
func (h *TenantHandler) SetQuotaOverride(c *gin.Context) {
	var req quotaOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	key := c.Param("key")
	if err := h.service.SetQuotaOverride(c.Request.Context(), key, req.Feature, req.Limit); err != nil {
		h.logger.Errorw("failed to set quota override", "error", err, "key", key, "feature", req.Feature)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "quota override applied", nil)
}
