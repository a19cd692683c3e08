package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	consentApp "github.com/veyra-inc/veyra/internal/application/consent"
	"github.com/veyra-inc/veyra/internal/domain/consent"
	"github.com/veyra-inc/veyra/internal/interfaces/http/middleware"
	"github.com/veyra-inc/veyra/internal/shared/constants"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// ConsentHandler handles HTTP requests for legal document consent
type ConsentHandler struct {
	service *consentApp.Service
	logger  logger.Interface
}

// NewConsentHandler creates a new consent handler
func NewConsentHandler(service *consentApp.Service, logger logger.Interface) *ConsentHandler {
	return &ConsentHandler{
		service: service,
		logger:  logger,
	}
}

type acceptConsentRequest struct {
	DocType string `json:"doc_type" binding:"required"`
	Version string `json:"version" binding:"required"`
}

// Accept handles POST /consent. Client metadata is captured from the
// request itself, not the body, so the audit row reflects what the
// server saw.
func (h *ConsentHandler) Accept(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	var req acceptConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	client := consent.ClientMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader(constants.HeaderUserAgent),
	}

	if err := h.service.RecordConsent(c.Request.Context(), tctx, consent.DocType(req.DocType), req.Version, client); err != nil {
		h.logger.Errorw("failed to record consent",
			"error", err,
			"user_id", tctx.UserID,
			"doc_type", req.DocType,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "consent recorded", nil)
}

// GetStatus handles GET /consent/status
func (h *ConsentHandler) GetStatus(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	required, err := h.service.RequiresReacceptance(c.Request.Context(), tctx.UserID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"reacceptance_required": required})
}

type auditEntryResponse struct {
	DocType   string    `json:"doc_type"`
	Version   string    `json:"version"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GetAuditTrail handles GET /consent/audit/:doc_type
func (h *ConsentHandler) GetAuditTrail(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	docType := consent.DocType(c.Param("doc_type"))
	entries, err := h.service.GetAuditTrail(c.Request.Context(), tctx.UserID, docType)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, auditEntryResponse{
			DocType:   entry.DocType().String(),
			Version:   entry.Version(),
			IPAddress: entry.Client().IPAddress,
			UserAgent: entry.Client().UserAgent,
			CreatedAt: entry.CreatedAt(),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"entries": out})
}

type publishVersionRequest struct {
	Version string `json:"version" binding:"required"`
}

// PublishVersion handles PUT /admin/legal-docs/:doc_type/current
func (h *ConsentHandler) PublishVersion(c *gin.Context) {
	var req publishVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	docType := consent.DocType(c.Param("doc_type"))
	if err := h.service.SetCurrentVersion(c.Request.Context(), docType, req.Version); err != nil {
		h.logger.Errorw("failed to publish document version",
			"error", err,
			"doc_type", docType,
			"version", req.Version,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "document version published", nil)
}
