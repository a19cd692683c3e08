package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	retentionApp "github.com/veyra-inc/veyra/internal/application/retention"
	"github.com/veyra-inc/veyra/internal/domain/retention"
	"github.com/veyra-inc/veyra/internal/interfaces/http/middleware"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// RetentionHandler handles HTTP requests for retention policy and the
// GDPR deletion workflow
type RetentionHandler struct {
	service *retentionApp.Service
	logger  logger.Interface
}

// NewRetentionHandler creates a new retention handler
func NewRetentionHandler(service *retentionApp.Service, logger logger.Interface) *RetentionHandler {
	return &RetentionHandler{
		service: service,
		logger:  logger,
	}
}

type setPolicyRequest struct {
	DataTypeName  string `json:"data_type_name" binding:"required"`
	RetentionDays int    `json:"retention_days" binding:"required,min=1"`
}

// SetPolicy handles PUT /admin/retention-policies
func (h *RetentionHandler) SetPolicy(c *gin.Context) {
	var req setPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.SetPolicy(c.Request.Context(), req.DataTypeName, req.RetentionDays); err != nil {
		h.logger.Errorw("failed to set retention policy",
			"error", err,
			"data_type", req.DataTypeName,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "retention policy updated", nil)
}

type archiveRequest struct {
	TenantKey     string   `json:"tenant_key" binding:"required"`
	DataTypeNames []string `json:"data_type_names" binding:"required"`
}

// ArchiveTenantData handles POST /admin/archives
func (h *RetentionHandler) ArchiveTenantData(c *gin.Context) {
	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	counts, err := h.service.ArchiveTenantData(c.Request.Context(), req.TenantKey, req.DataTypeNames)
	if err != nil {
		h.logger.Errorw("failed to archive tenant data",
			"error", err,
			"tenant_key", req.TenantKey,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "tenant data archived", gin.H{"archived": counts})
}

type deletionRequestResponse struct {
	RequestID   string     `json:"request_id"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	DueAt       time.Time  `json:"due_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailReason  string     `json:"fail_reason,omitempty"`
}

func toDeletionRequestResponse(r *retention.DeletionRequest) deletionRequestResponse {
	return deletionRequestResponse{
		RequestID:   r.RequestID(),
		UserID:      r.UserID(),
		Status:      r.Status().String(),
		RequestedAt: r.RequestedAt(),
		DueAt:       r.DueAt(),
		CompletedAt: r.CompletedAt(),
		FailReason:  r.FailReason(),
	}
}

// RequestDeletion handles POST /privacy/deletion-requests
func (h *RetentionHandler) RequestDeletion(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	requestID := uuid.NewString()
	request, err := h.service.RequestDeletion(c.Request.Context(), tctx, requestID)
	if err != nil {
		h.logger.Errorw("failed to open deletion request", "error", err, "user_id", tctx.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toDeletionRequestResponse(request), "deletion request opened")
}

// CompleteDeletion handles POST /admin/deletion-requests/:request_id/complete
func (h *RetentionHandler) CompleteDeletion(c *gin.Context) {
	requestID := c.Param("request_id")

	counts, err := h.service.CompleteDeletion(c.Request.Context(), requestID)
	if err != nil {
		h.logger.Errorw("failed to complete deletion request", "error", err, "request_id", requestID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "deletion request completed", gin.H{"deleted": counts})
}

// ListOverdueDeletions handles GET /admin/deletion-requests/overdue
func (h *RetentionHandler) ListOverdueDeletions(c *gin.Context) {
	requests, err := h.service.GetOverdueDeletions(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	out := make([]deletionRequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, toDeletionRequestResponse(request))
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"requests": out})
}
