package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	usageApp "github.com/veyra-inc/veyra/internal/application/usage"
	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// EnforceQuota consumes one unit of the tenant's monthly quota for the
// feature before the handler runs. Exhausted quota surfaces as 429 with
// no counter change. Runs after RequireFeature, so the check-then-count
// order is fixed at the route level.
func EnforceQuota(usageService *usageApp.Service, feature entitlement.Feature, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tctx, ok := GetTenantContext(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
			c.Abort()
			return
		}

		count, err := usageService.CheckAndIncrement(c.Request.Context(), tctx, feature.String())
		if err != nil {
			log.Warnw("quota enforcement rejected request",
				"tenant_key", tctx.TenantKey,
				"feature", feature,
				"error", err,
			)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		c.Header("X-Usage-Count", strconv.FormatInt(count, 10))
		c.Next()
	}
}
