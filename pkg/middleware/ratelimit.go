package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bettybots/pkg/metrics"
	"bettybots/pkg/ratelimit"
	"bettybots/pkg/utils"
)

// RateLimit rejects callers over their per-IP budget with 429. Limiter
// errors let the request through.
func RateLimit(limiter ratelimit.Allower, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + "|" + c.ClientIP()
		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
		}
		if !ok {
			metrics.ObserveRateLimited(c.FullPath())
			utils.RespondError(c, http.StatusTooManyRequests, utils.ErrRateLimited.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}
