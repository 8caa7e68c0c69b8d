package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/claimguard/pkg/logger"
	"go.uber.org/zap"
)

// quietRoutes are polled by infrastructure and logged at debug level only
var quietRoutes = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// RequestLogger logs each request against its route template, with the
// claim id when the route carries one
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if claimID := c.Param("id"); claimID != "" {
			fields = append(fields, zap.String("claim_id", claimID))
		}

		reqLogger := logger.WithContext(c.Request.Context())
		switch {
		case len(c.Errors) > 0:
			reqLogger.Error("Request completed with errors", append(fields, zap.String("errors", c.Errors.String()))...)
		case quietRoutes[route]:
			reqLogger.Debug("Request completed", fields...)
		default:
			reqLogger.Info("Request completed", fields...)
		}
	}
}
