package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/logger"
)

// Recovery turns panics into a generic 500 without leaking internals.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Errorw("panic recovered",
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
		c.Abort()
	})
}

// RequestLogger logs each request with latency via zap.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Infow("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", c.GetString(RequestIDHeader),
		)
	}
}
