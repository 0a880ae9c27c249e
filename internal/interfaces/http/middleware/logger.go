package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"parcelhub.backend/pkg/logger"
	"parcelhub.backend/pkg/metrics"
)

// LoggerMiddleware logs HTTP requests using the structured logger.
// Token-bearing paths are logged by route template so links never reach the log.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

// MetricsMiddleware records request counts, latency and in-flight requests
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := metrics.RequestStarted()
		defer done()
		start := time.Now()

		c.Next()

		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
