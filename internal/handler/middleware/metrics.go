package middleware

import (
	"time"

	"travel-backoffice/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records latency per route template, never per raw path.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
