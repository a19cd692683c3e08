package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/infrastructure/config"
	"github.com/veyra-inc/veyra/internal/infrastructure/ratelimit"
	"github.com/veyra-inc/veyra/internal/interfaces/http/handlers"
	"github.com/veyra-inc/veyra/internal/interfaces/http/middleware"
	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine    *gin.Engine
	container *Container
	cfg       *config.Config
	logger    logger.Interface

	limiter     ratelimit.RateLimiter
	limitConfig ratelimit.RateLimitConfig

	tenantHandler      *handlers.TenantHandler
	entitlementHandler *handlers.EntitlementHandler
	usageHandler       *handlers.UsageHandler
	lifecycleHandler   *handlers.LifecycleHandler
	closureHandler     *handlers.ClosureHandler
	abuseHandler       *handlers.AbuseHandler
	consentHandler     *handlers.ConsentHandler
	retentionHandler   *handlers.RetentionHandler
	billingHandler     *handlers.BillingHandler
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(gdb *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	gin.SetMode(ginMode(cfg.Server.Mode))
	engine := gin.New()

	container := NewContainer(gdb, redisClient, cfg, log)

	var limiter ratelimit.RateLimiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisRateLimiter(redisClient)
	} else {
		limiter = ratelimit.NewMemoryRateLimiter()
	}

	return &Router{
		engine:    engine,
		container: container,
		cfg:       cfg,
		logger:    log,
		limiter:   limiter,
		limitConfig: ratelimit.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			RequestsPerHour:   cfg.RateLimit.RequestsPerHour,
			RequestsPerDay:    cfg.RateLimit.RequestsPerDay,
		},
		tenantHandler:      handlers.NewTenantHandler(container.Tenants, log),
		entitlementHandler: handlers.NewEntitlementHandler(container.Entitlements, log),
		usageHandler:       handlers.NewUsageHandler(container.Usage, container.Abuse, log),
		lifecycleHandler:   handlers.NewLifecycleHandler(container.Trials, container.Activations, container.Onboarding, container.Offboarding, log),
		closureHandler:     handlers.NewClosureHandler(container.Closures, log),
		abuseHandler:       handlers.NewAbuseHandler(container.Abuse, log),
		consentHandler:     handlers.NewConsentHandler(container.Consent, log),
		retentionHandler:   handlers.NewRetentionHandler(container.Retention, log),
		billingHandler:     handlers.NewBillingHandler(container.Billing, log),
	}
}

func ginMode(mode string) string {
	switch mode {
	case "release", "production", "prod":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.RateLimit(r.limiter, r.limitConfig))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Billing provider callbacks authenticate out of band; identity
	// comes from the webhook payload, not the tenant headers.
	r.engine.POST("/webhooks/billing", r.billingHandler.HandleWebhook)

	identified := r.engine.Group("")
	identified.Use(middleware.TenantContext(r.container.Tenants, r.logger))
	identified.Use(middleware.LockoutCheck(r.container.Abuse, r.logger))

	// Consent routes stay reachable while reacceptance is pending,
	// otherwise a user could never clear the gate.
	consentGroup := identified.Group("/consent")
	{
		consentGroup.POST("", r.consentHandler.Accept)
		consentGroup.GET("/status", r.consentHandler.GetStatus)
		consentGroup.GET("/audit/:doc_type", r.consentHandler.GetAuditTrail)
	}

	gated := identified.Group("")
	gated.Use(middleware.ConsentGate(r.container.Consent, r.logger))
	{
		users := gated.Group("/users/me")
		{
			users.GET("/entitlements", r.entitlementHandler.GetMyEntitlements)
			users.GET("/entitlements/:feature", r.entitlementHandler.CheckFeature)
		}

		gated.GET("/usage/:feature", r.usageHandler.GetUsage)

		gated.POST("/ai/completions",
			middleware.RequireFeature(r.container.Entitlements, entitlement.FeatureAICalls, r.logger),
			middleware.EnforceQuota(r.container.Usage, entitlement.FeatureAICalls, r.logger),
			r.usageHandler.CompleteAI,
		)

		lifecycle := gated.Group("/lifecycle")
		{
			lifecycle.POST("/trial", r.lifecycleHandler.StartTrial)
			lifecycle.GET("/trial", r.lifecycleHandler.GetTrial)

			lifecycle.POST("/activation", r.lifecycleHandler.RecordActivation)
			lifecycle.GET("/activation", r.lifecycleHandler.GetActivationStatus)

			lifecycle.GET("/onboarding", r.lifecycleHandler.GetOnboarding)
			lifecycle.POST("/onboarding/steps/:step", r.lifecycleHandler.CompleteOnboardingStep)
			lifecycle.POST("/onboarding/reset", r.lifecycleHandler.ResetOnboarding)

			lifecycle.POST("/offboarding", r.lifecycleHandler.InitiateOffboarding)
			lifecycle.POST("/offboarding/complete", r.lifecycleHandler.CompleteOffboarding)
			lifecycle.GET("/offboarding", r.lifecycleHandler.GetOffboardingHistory)

			lifecycle.POST("/closure", r.closureHandler.InitiateClosure)
			lifecycle.DELETE("/closure", r.closureHandler.CancelClosure)
		}

		gated.POST("/privacy/deletion-requests", r.retentionHandler.RequestDeletion)
	}

	// Admin routes act on behalf of users named in the request, so
	// they skip the tenant header resolution chain. Operator
	// authentication is expected at the gateway in front of this
	// service.
	admin := r.engine.Group("/admin")
	{
		tenants := admin.Group("/tenants")
		{
			tenants.POST("", r.tenantHandler.Register)
			tenants.GET("/:key", r.tenantHandler.Get)
			tenants.PUT("/:key/plan", r.tenantHandler.ChangePlan)
			tenants.PUT("/:key/quota-overrides", r.tenantHandler.SetQuotaOverride)
		}

		admin.POST("/entitlements", r.entitlementHandler.Grant)
		admin.DELETE("/entitlements", r.entitlementHandler.Revoke)

		fraud := admin.Group("/fraud-events")
		{
			fraud.POST("", r.abuseHandler.RecordEvent)
			fraud.GET("", r.abuseHandler.ListUnresolved)
			fraud.POST("/:id/resolve", r.abuseHandler.ResolveEvent)
		}

		admin.POST("/lockouts", r.abuseHandler.LockAccount)
		admin.DELETE("/lockouts/:user_id", r.abuseHandler.UnlockAccount)

		admin.GET("/purges", r.closureHandler.ListPendingPurges)
		admin.POST("/purges/:user_id", r.closureHandler.ExecutePurge)

		admin.PUT("/legal-docs/:doc_type/current", r.consentHandler.PublishVersion)

		admin.PUT("/retention-policies", r.retentionHandler.SetPolicy)
		admin.POST("/archives", r.retentionHandler.ArchiveTenantData)
		admin.POST("/deletion-requests/:request_id/complete", r.retentionHandler.CompleteDeletion)
		admin.GET("/deletion-requests/overdue", r.retentionHandler.ListOverdueDeletions)
	}
}

// Container exposes the service graph for background job registration.
func (r *Router) Container() *Container {
	return r.container
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
