package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	lifecycleApp "github.com/veyra-inc/veyra/internal/application/lifecycle"
	"github.com/veyra-inc/veyra/internal/domain/lifecycle"
	"github.com/veyra-inc/veyra/internal/interfaces/http/middleware"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// ClosureHandler handles HTTP requests for account closure and purge
type ClosureHandler struct {
	service *lifecycleApp.ClosureService
	logger  logger.Interface
}

// NewClosureHandler creates a new closure handler
func NewClosureHandler(service *lifecycleApp.ClosureService, logger logger.Interface) *ClosureHandler {
	return &ClosureHandler{
		service: service,
		logger:  logger,
	}
}

type closureResponse struct {
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	PurgeAt     time.Time  `json:"purge_at"`
	PurgedAt    *time.Time `json:"purged_at,omitempty"`
}

func toClosureResponse(c *lifecycle.Closure) closureResponse {
	return closureResponse{
		UserID:      c.UserID(),
		Status:      c.Status().String(),
		RequestedAt: c.RequestedAt(),
		PurgeAt:     c.PurgeAt(),
		PurgedAt:    c.PurgedAt(),
	}
}

// InitiateClosure handles POST /lifecycle/closure
func (h *ClosureHandler) InitiateClosure(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	closure, err := h.service.InitiateClosure(c.Request.Context(), tctx)
	if err != nil {
		h.logger.Warnw("failed to initiate account closure", "error", err, "user_id", tctx.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toClosureResponse(closure), "account closure scheduled")
}

// CancelClosure handles DELETE /lifecycle/closure
func (h *ClosureHandler) CancelClosure(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	cancelled, err := h.service.CancelClosure(c.Request.Context(), tctx)
	if err != nil {
		h.logger.Errorw("failed to cancel account closure", "error", err, "user_id", tctx.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"cancelled": cancelled})
}

// ListPendingPurges handles GET /admin/purges
func (h *ClosureHandler) ListPendingPurges(c *gin.Context) {
	closures, err := h.service.GetPendingPurges(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	out := make([]closureResponse, 0, len(closures))
	for _, closure := range closures {
		out = append(out, toClosureResponse(closure))
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"pending_purges": out})
}

// ExecutePurge handles POST /admin/purges/:user_id
func (h *ClosureHandler) ExecutePurge(c *gin.Context) {
	userID := c.Param("user_id")

	counts, err := h.service.ExecutePurge(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to execute purge", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "purge executed", gin.H{"deleted": counts})
}
