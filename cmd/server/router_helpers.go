package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"parcelhub.backend/internal/interfaces/http/middleware"
	"parcelhub.backend/pkg/metrics"
)

// applyCORSMiddleware echoes the caller's origin when it is the web client
// (or any origin when allowedOrigin is empty) and answers preflights.
func applyCORSMiddleware(r *gin.Engine, allowedOrigin string) {
	allowedOrigin = strings.TrimRight(allowedOrigin, "/")
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowedOrigin == "" || origin == allowedOrigin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, "+middleware.IdempotencyHeader+", "+middleware.RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", middleware.RequestIDHeader+", "+middleware.IdempotencyReplayHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
