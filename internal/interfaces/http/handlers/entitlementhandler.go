package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	entitlementApp "github.com/veyra-inc/veyra/internal/application/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/interfaces/http/middleware"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// EntitlementHandler handles HTTP requests for entitlement operations
type EntitlementHandler struct {
	service *entitlementApp.Service
	logger  logger.Interface
}

// NewEntitlementHandler creates a new entitlement handler
func NewEntitlementHandler(service *entitlementApp.Service, logger logger.Interface) *EntitlementHandler {
	return &EntitlementHandler{
		service: service,
		logger:  logger,
	}
}

type entitlementResponse struct {
	Feature   string     `json:"feature"`
	Source    string     `json:"source"`
	Granted   bool       `json:"granted"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func toEntitlementResponses(entitlements []*entitlement.Entitlement) []entitlementResponse {
	out := make([]entitlementResponse, 0, len(entitlements))
	for _, e := range entitlements {
		out = append(out, entitlementResponse{
			Feature:   e.Feature().String(),
			Source:    e.Source().String(),
			Granted:   e.IsGranted(),
			RevokedAt: e.RevokedAt(),
		})
	}
	return out
}

// GetMyEntitlements handles GET /users/me/entitlements
func (h *EntitlementHandler) GetMyEntitlements(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	entitlements, err := h.service.List(c.Request.Context(), tctx)
	if err != nil {
		h.logger.Errorw("failed to list entitlements", "error", err, "user_id", tctx.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"entitlements": toEntitlementResponses(entitlements),
	})
}

// CheckFeature handles GET /users/me/entitlements/:feature
func (h *EntitlementHandler) CheckFeature(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	feature := entitlement.Feature(c.Param("feature"))
	if !feature.IsValid() {
		utils.ErrorResponse(c, http.StatusBadRequest, "unknown feature")
		return
	}

	has, err := h.service.Has(c.Request.Context(), tctx, feature)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"feature": feature.String(),
		"granted": has,
	})
}

type grantRequest struct {
	TenantKey string `json:"tenant_key" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	Feature   string `json:"feature" binding:"required"`
	Source    string `json:"source" binding:"required"`
}

// Grant handles POST /admin/entitlements
func (h *EntitlementHandler) Grant(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tctx, err := adminTenantContext(req.TenantKey, req.UserID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.service.Grant(c.Request.Context(), tctx, entitlement.Feature(req.Feature), entitlement.SourceType(req.Source))
	if err != nil {
		h.logger.Errorw("failed to grant entitlement",
			"error", err,
			"user_id", req.UserID,
			"feature", req.Feature,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "entitlement granted", entitlementResponse{
		Feature: e.Feature().String(),
		Source:  e.Source().String(),
		Granted: e.IsGranted(),
	})
}

type revokeRequest struct {
	TenantKey string `json:"tenant_key" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	Feature   string `json:"feature" binding:"required"`
}

// Revoke handles DELETE /admin/entitlements
func (h *EntitlementHandler) Revoke(c *gin.Context) {
	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tctx, err := adminTenantContext(req.TenantKey, req.UserID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Revoke(c.Request.Context(), tctx, entitlement.Feature(req.Feature)); err != nil {
		h.logger.Errorw("failed to revoke entitlement",
			"error", err,
			"user_id", req.UserID,
			"feature", req.Feature,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "entitlement revoked", nil)
}
