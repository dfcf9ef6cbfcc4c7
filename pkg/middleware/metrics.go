package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bettybots/pkg/metrics"
)

// Metrics labels requests by route template so tenant ids do not explode
// the label set.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
