package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veyra-inc/veyra/internal/infrastructure/ratelimit"
	"github.com/veyra-inc/veyra/internal/shared/utils"
)

// RateLimit enforces per-client request rates ahead of the quota layer.
// The key is the client IP; identity-level limits belong to the quota
// middleware.
func RateLimit(limiter ratelimit.RateLimiter, config ratelimit.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP(), config)
		if err != nil {
			// If the limiter backend is unavailable, allow the request
			// to avoid blocking all traffic
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
