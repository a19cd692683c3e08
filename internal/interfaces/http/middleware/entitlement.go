package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entitlementApp "github.com/veyra-inc/veyra/internal/application/entitlement"
	"github.com/veyra-inc/veyra/internal/domain/entitlement"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// RequireFeature rejects requests from users without an active grant
// for the feature. Runs after TenantContext.
func RequireFeature(entitlementService *entitlementApp.Service, feature entitlement.Feature, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tctx, ok := GetTenantContext(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
			c.Abort()
			return
		}

		has, err := entitlementService.Has(c.Request.Context(), tctx, feature)
		if err != nil {
			log.Errorw("failed to check entitlement",
				"user_id", tctx.UserID,
				"feature", feature,
				"error", err,
			)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		if !has {
			utils.ErrorResponse(c, http.StatusForbidden, "feature not entitled: "+feature.String())
			c.Abort()
			return
		}

		c.Next()
	}
}
