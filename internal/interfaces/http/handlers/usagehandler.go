package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	abuseApp "github.com/veyra-inc/veyra/internal/application/abuse"
	usageApp "github.com/veyra-inc/veyra/internal/application/usage"
	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/interfaces/http/middleware"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// Abuse detection parameters for the AI route. Thresholds are projected
// against the plan ceiling, not fixed counts.
const (
	aiAbuseWindow     = time.Hour
	aiAbuseThreshold  = 500
	apiAbuseProjected = 3.0
)

// UsageHandler handles HTTP requests for usage and the metered AI route
type UsageHandler struct {
	usageService *usageApp.Service
	abuseService *abuseApp.Service
	logger       logger.Interface
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(usageService *usageApp.Service, abuseService *abuseApp.Service, logger logger.Interface) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
		abuseService: abuseService,
		logger:       logger,
	}
}

// GetUsage handles GET /usage/:feature
func (h *UsageHandler) GetUsage(c *gin.Context) {
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

	count, err := h.usageService.GetCurrentUsage(c.Request.Context(), tctx.TenantKey, feature.String())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	ceiling, err := h.usageService.EffectiveCeiling(c.Request.Context(), tctx.TenantKey, feature.String())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"feature": feature.String(),
		"count":   count,
		"ceiling": ceiling,
	})
}

type aiCompletionRequest struct {
	Model      string `json:"model" binding:"required"`
	TokensUsed int64  `json:"tokens_used" binding:"required,min=1"`
	CostCents  int64  `json:"cost_cents" binding:"min=0"`
}

// CompleteAI handles POST /ai/completions. The entitlement and quota
// middleware have already gated and counted the call; this handler
// appends the immutable cost log row and runs abuse detection as a
// side channel that never fails the request.
func (h *UsageHandler) CompleteAI(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	var req aiCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.usageService.RecordAICost(c.Request.Context(), tctx, req.Model, req.TokensUsed, req.CostCents)
	if err != nil {
		h.logger.Errorw("failed to record AI cost", "error", err, "user_id", tctx.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if flagged, err := h.abuseService.DetectAIAbuse(c.Request.Context(), tctx, aiAbuseWindow, aiAbuseThreshold); err != nil {
		h.logger.Warnw("AI abuse detection failed", "error", err, "user_id", tctx.UserID)
	} else if flagged {
		h.logger.Warnw("AI abuse detected", "user_id", tctx.UserID, "tenant_key", tctx.TenantKey)
	}

	if _, err := h.abuseService.DetectAPIAbuse(c.Request.Context(), tctx, entitlement.FeatureAICalls.String(), apiAbuseProjected); err != nil {
		h.logger.Warnw("API abuse detection failed", "error", err, "user_id", tctx.UserID)
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"model":       entry.Model(),
		"tokens_used": entry.TokensUsed(),
		"cost_cents":  entry.CostCents(),
	})
}
