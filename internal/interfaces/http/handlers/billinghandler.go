package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	billingApp "github.com/veyra-inc/veyra/internal/application/billing"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// Billing webhook event types.
const (
	eventSubscriptionCreated = "subscription.created"
	eventSubscriptionUpdated = "subscription.updated"
	eventSubscriptionDeleted = "subscription.deleted"
	eventPaymentFailed       = "payment.failed"
)

// BillingHandler handles inbound billing provider webhooks
type BillingHandler struct {
	service *billingApp.Service
	logger  logger.Interface
}

// NewBillingHandler creates a new billing webhook handler
func NewBillingHandler(service *billingApp.Service, logger logger.Interface) *BillingHandler {
	return &BillingHandler{
		service: service,
		logger:  logger,
	}
}

type billingWebhookRequest struct {
	EventType string `json:"event_type" binding:"required"`
	TenantKey string `json:"tenant_key" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	PlanTier  string `json:"plan_tier"`
	Attempt   int    `json:"attempt"`
}

// HandleWebhook handles POST /webhooks/billing. Unknown event types are
// acknowledged so the provider stops retrying them.
func (h *BillingHandler) HandleWebhook(c *gin.Context) {
	var req billingWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid webhook payload: "+err.Error())
		return
	}

	tctx, err := adminTenantContext(req.TenantKey, req.UserID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()

	switch req.EventType {
	case eventSubscriptionCreated:
		err = h.service.HandleSubscriptionCreated(ctx, tctx, req.PlanTier)
	case eventSubscriptionUpdated:
		err = h.service.HandleSubscriptionUpdated(ctx, tctx, req.PlanTier)
	case eventSubscriptionDeleted:
		err = h.service.HandleSubscriptionDeleted(ctx, tctx)
	case eventPaymentFailed:
		err = h.service.HandlePaymentFailed(ctx, tctx, req.Attempt)
	default:
		h.logger.Warnw("unknown billing event type", "event_type", req.EventType)
		utils.SuccessResponse(c, http.StatusOK, "event ignored", nil)
		return
	}

	if err != nil {
		h.logger.Errorw("failed to process billing webhook",
			"error", err,
			"event_type", req.EventType,
			"tenant_key", req.TenantKey,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "event processed", nil)
}
