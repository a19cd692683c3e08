package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	abuseApp "github.com/veyra-inc/veyra/internal/application/abuse"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// LockoutCheck rejects requests from users with an active account lock.
// Runs after TenantContext so the identity is already resolved.
func LockoutCheck(abuseService *abuseApp.Service, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tctx, ok := GetTenantContext(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
			c.Abort()
			return
		}

		locked, err := abuseService.IsAccountLocked(c.Request.Context(), tctx.UserID)
		if err != nil {
			log.Errorw("failed to check account lockout", "user_id", tctx.UserID, "error", err)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		if locked {
			utils.ErrorResponse(c, http.StatusForbidden, "account is locked")
			c.Abort()
			return
		}

		c.Next()
	}
}
