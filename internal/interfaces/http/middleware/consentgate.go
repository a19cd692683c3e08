package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	consentApp "github.com/veyra-inc/veyra/internal/application/consent"
	apperrors "github.com/veyra-inc/veyra/internal/shared/errors"
	"github.com/veyra-inc/veyra/internal/shared/logger"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// ConsentGate blocks users who have not accepted the current version of
// every configured legal document. Not applied to the consent
// submission routes, otherwise nobody could ever accept. When no
// document versions are configured the gate is open.
func ConsentGate(consentService *consentApp.Service, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tctx, ok := GetTenantContext(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "request identity not resolved")
			c.Abort()
			return
		}

		required, err := consentService.RequiresReacceptance(c.Request.Context(), tctx.UserID)
		if err != nil {
			log.Errorw("failed to check consent status", "user_id", tctx.UserID, "error", err)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		if required {
			utils.ErrorResponseWithError(c, apperrors.NewLegalHoldError("current legal documents must be accepted"))
			c.Abort()
			return
		}

		c.Next()
	}
}
