package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/claimguard/pkg/common"
	"github.com/richxcame/claimguard/pkg/logger"
	"go.uber.org/zap"
)

var handlerPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claimguard_http_panics_total",
	Help: "Panics recovered from HTTP handlers",
}, []string{"route"})

// Recovery turns a handler panic into a 500 response
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				handlerPanicsTotal.WithLabelValues(c.FullPath()).Inc()
				logger.WithContext(c.Request.Context()).Error("Panic recovered",
					zap.Any("error", err),
					zap.String("route", c.FullPath()),
					zap.String("method", c.Request.Method),
					zap.Stack("stack"),
				)

				common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
