package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	abuseApp "github.com/veyra-inc/veyra/internal/application/abuse"
	"github.com/veyra-inc/veyra/internal/domain/abuse"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// AbuseHandler handles HTTP requests for the fraud and lockout admin plane
type AbuseHandler struct {
	service *abuseApp.Service
	logger  logger.Interface
}

// NewAbuseHandler creates a new abuse handler
func NewAbuseHandler(service *abuseApp.Service, logger logger.Interface) *AbuseHandler {
	return &AbuseHandler{
		service: service,
		logger:  logger,
	}
}

type fraudEventResponse struct {
	ID        uint           `json:"id"`
	UserID    string         `json:"user_id"`
	TenantKey string         `json:"tenant_key"`
	EventType string         `json:"event_type"`
	Severity  string         `json:"severity"`
	Detail    map[string]any `json:"detail,omitempty"`
	Resolved  bool           `json:"resolved"`
	CreatedAt time.Time      `json:"created_at"`
}

func toFraudEventResponses(events []*abuse.FraudEvent) []fraudEventResponse {
	out := make([]fraudEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, fraudEventResponse{
			ID:        e.ID(),
			UserID:    e.UserID(),
			TenantKey: e.TenantKey(),
			EventType: e.EventType().String(),
			Severity:  e.Severity().String(),
			Detail:    e.Detail(),
			Resolved:  e.IsResolved(),
			CreatedAt: e.CreatedAt(),
		})
	}
	return out
}

type recordEventRequest struct {
	TenantKey string         `json:"tenant_key" binding:"required"`
	UserID    string         `json:"user_id" binding:"required"`
	EventType string         `json:"event_type" binding:"required"`
	Severity  string         `json:"severity" binding:"required"`
	Detail    map[string]any `json:"detail"`
}

// RecordEvent handles POST /admin/fraud-events
func (h *AbuseHandler) RecordEvent(c *gin.Context) {
	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tctx, err := adminTenantContext(req.TenantKey, req.UserID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.service.RecordEvent(c.Request.Context(), tctx, abuse.EventType(req.EventType), abuse.Severity(req.Severity), req.Detail)
	if err != nil {
		h.logger.Errorw("failed to record fraud event", "error", err, "user_id", req.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toFraudEventResponses([]*abuse.FraudEvent{event})[0], "fraud event recorded")
}

// ListUnresolved handles GET /admin/fraud-events
func (h *AbuseHandler) ListUnresolved(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := h.service.GetUnresolvedEvents(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"events": toFraudEventResponses(events)})
}

// ResolveEvent handles POST /admin/fraud-events/:id/resolve
func (h *AbuseHandler) ResolveEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid event ID")
		return
	}

	if err := h.service.ResolveEvent(c.Request.Context(), uint(id)); err != nil {
		h.logger.Errorw("failed to resolve fraud event", "error", err, "event_id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "event resolved", nil)
}

type lockAccountRequest struct {
	TenantKey string `json:"tenant_key" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

// LockAccount handles POST /admin/lockouts
func (h *AbuseHandler) LockAccount(c *gin.Context) {
	var req lockAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tctx, err := adminTenantContext(req.TenantKey, req.UserID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	lockout, err := h.service.LockAccount(c.Request.Context(), tctx, req.Reason)
	if err != nil {
		h.logger.Warnw("failed to lock account", "error", err, "user_id", req.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"user_id":   lockout.UserID(),
		"reason":    lockout.Reason(),
		"locked_at": lockout.LockedAt(),
	}, "account locked")
}

// UnlockAccount handles DELETE /admin/lockouts/:user_id
func (h *AbuseHandler) UnlockAccount(c *gin.Context) {
	userID := c.Param("user_id")

	unlocked, err := h.service.UnlockAccount(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to unlock account", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"unlocked": unlocked})
}
