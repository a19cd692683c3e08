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

// LifecycleHandler handles HTTP requests for trial, activation,
// onboarding and offboarding operations
type LifecycleHandler struct {
	trials      *lifecycleApp.TrialService
	activations *lifecycleApp.ActivationService
	onboarding  *lifecycleApp.OnboardingService
	offboarding *lifecycleApp.OffboardingService
	logger      logger.Interface
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(
	trials *lifecycleApp.TrialService,
	activations *lifecycleApp.ActivationService,
	onboarding *lifecycleApp.OnboardingService,
	offboarding *lifecycleApp.OffboardingService,
	logger logger.Interface,
) *LifecycleHandler {
	return &LifecycleHandler{
		trials:      trials,
		activations: activations,
		onboarding:  onboarding,
		offboarding: offboarding,
		logger:      logger,
	}
}

type trialResponse struct {
	Status    string    `json:"status"`
	Active    bool      `json:"active"`
	StartedAt time.Time `json:"started_at"`
	EndAt     time.Time `json:"end_at"`
}

func toTrialResponse(t *lifecycle.Trial) trialResponse {
	return trialResponse{
		Status:    t.Status().String(),
		Active:    t.IsActive(),
		StartedAt: t.StartedAt(),
		EndAt:     t.EndAt(),
	}
}

// StartTrial handles POST /lifecycle/trial
func (h *LifecycleHandler) StartTrial(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	trial, err := h.trials.StartTrial(c.Request.Context(), tctx)
	if err != nil {
		h.logger.Warnw("failed to start trial", "error", err, "user_id", tctx.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toTrialResponse(trial), "trial started")
}

// GetTrial handles GET /lifecycle/trial
func (h *LifecycleHandler) GetTrial(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	trial, err := h.trials.GetTrial(c.Request.Context(), tctx.UserID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toTrialResponse(trial))
}

type activationRequest struct {
	EventName string         `json:"event_name" binding:"required"`
	Metadata  map[string]any `json:"metadata"`
}

// RecordActivation handles POST /lifecycle/activation
func (h *LifecycleHandler) RecordActivation(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	var req activationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.activations.Record(c.Request.Context(), tctx, req.EventName, req.Metadata)
	if err != nil {
		h.logger.Errorw("failed to record activation event",
			"error", err,
			"user_id", tctx.UserID,
			"event_name", req.EventName,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"event_name":  event.EventName(),
		"recorded_at": event.CreatedAt(),
	})
}

// GetActivationStatus handles GET /lifecycle/activation
func (h *LifecycleHandler) GetActivationStatus(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	activated, err := h.activations.IsActivated(c.Request.Context(), tctx.UserID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"activated": activated})
}

type onboardingResponse struct {
	Steps       []string   `json:"steps"`
	Complete    bool       `json:"complete"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toOnboardingResponse(o *lifecycle.Onboarding) onboardingResponse {
	steps := make([]string, 0, len(o.Steps()))
	for _, step := range o.Steps() {
		steps = append(steps, step.String())
	}
	return onboardingResponse{
		Steps:       steps,
		Complete:    o.IsComplete(),
		CompletedAt: o.CompletedAt(),
	}
}

// GetOnboarding handles GET /lifecycle/onboarding
func (h *LifecycleHandler) GetOnboarding(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	state, err := h.onboarding.GetOrCreate(c.Request.Context(), tctx)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toOnboardingResponse(state))
}

// CompleteOnboardingStep handles POST /lifecycle/onboarding/steps/:step
func (h *LifecycleHandler) CompleteOnboardingStep(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	step := lifecycle.OnboardingStep(c.Param("step"))
	state, err := h.onboarding.MarkStepComplete(c.Request.Context(), tctx, step)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toOnboardingResponse(state))
}

// ResetOnboarding handles POST /lifecycle/onboarding/reset
func (h *LifecycleHandler) ResetOnboarding(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	if err := h.onboarding.Reset(c.Request.Context(), tctx); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "onboarding reset", nil)
}

type offboardingRequest struct {
	Reason   string `json:"reason" binding:"required"`
	Feedback string `json:"feedback"`
}

type offboardingResponse struct {
	Reason      string     `json:"reason"`
	Feedback    string     `json:"feedback,omitempty"`
	InitiatedAt time.Time  `json:"initiated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toOffboardingResponse(o *lifecycle.Offboarding) offboardingResponse {
	return offboardingResponse{
		Reason:      o.Reason().String(),
		Feedback:    o.Feedback(),
		InitiatedAt: o.InitiatedAt(),
		CompletedAt: o.CompletedAt(),
	}
}

// InitiateOffboarding handles POST /lifecycle/offboarding
func (h *LifecycleHandler) InitiateOffboarding(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	var req offboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	record, err := h.offboarding.Initiate(c.Request.Context(), tctx, lifecycle.OffboardingReason(req.Reason), req.Feedback)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toOffboardingResponse(record), "offboarding initiated")
}

// CompleteOffboarding handles POST /lifecycle/offboarding/complete
func (h *LifecycleHandler) CompleteOffboarding(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	record, err := h.offboarding.Complete(c.Request.Context(), tctx.UserID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "offboarding completed", toOffboardingResponse(record))
}

// GetOffboardingHistory handles GET /lifecycle/offboarding
func (h *LifecycleHandler) GetOffboardingHistory(c *gin.Context) {
	tctx, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
		return
	}

	records, err := h.offboarding.History(c.Request.Context(), tctx.UserID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	out := make([]offboardingResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toOffboardingResponse(record))
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"records": out})
}
