package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tenantApp "github.com/veyra-inc/veyra/internal/application/tenant"
	"github.com/veyra-inc/veyra/internal/domain/tenant"
	"github.com/veyra-inc/veyra/internal/shared/constants"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// TenantContext resolves the tenant and user identity headers into a
// validated request context. Unknown tenants get 404, deactivated
// tenants 403. Every route behind this middleware can assume a valid
// identity is present.
func TenantContext(tenantService *tenantApp.Service, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantKey := c.GetHeader(constants.HeaderXTenantKey)
		userID := c.GetHeader(constants.HeaderXUserID)

		if tenantKey == "" || userID == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "tenant key and user ID headers are required")
			c.Abort()
			return
		}

		tctx, err := tenantService.Resolve(c.Request.Context(), tenantKey, userID)
		if err != nil {
			log.Warnw("failed to resolve tenant context",
				"tenant_key", tenantKey,
				"user_id", userID,
				"error", err,
			)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTenantContext, tctx)
		c.Set(constants.ContextKeyUserID, tctx.UserID)
		c.Next()
	}
}

// GetTenantContext extracts the resolved identity set by TenantContext.
func GetTenantContext(c *gin.Context) (tenant.Context, bool) {
	value, exists := c.Get(constants.ContextKeyTenantContext)
	if !exists {
		return tenant.Context{}, false
	}
	tctx, ok := value.(tenant.Context)
	return tctx, ok
}
