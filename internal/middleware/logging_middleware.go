package middleware

import (
	"time"

	"devreload/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggingMiddleware writes one line per request once the handler chain is
// done, so long-lived /hot-reload connections are logged when the page leaves.
// Server errors go out at error level.
func LoggingMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := l
		if log == nil {
			log = logger.GetGlobalLogger()
		}
		if log == nil {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.String("remote_addr", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if status >= 500 {
			log.ErrorContext(c.Request.Context(), "request", fields...)
			return
		}
		log.InfoContext(c.Request.Context(), "request", fields...)
	}
}
