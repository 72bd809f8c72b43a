// internal/api/middleware/logger.go
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/common/metrics"
)

// AccessLog writes one structured line per request and counts it.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		fields := map[string]interface{}{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"ip":         c.ClientIP(),
		}
		if status >= 500 {
			log.Error("http request", fields)
			return
		}
		log.Info("http request", fields)
	}
}
