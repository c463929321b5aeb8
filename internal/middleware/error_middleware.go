package middleware

import (
	"errors"
	"net/http"

	"devreload/internal/transport/httpdto"
	devreload_errors "devreload/pkg/errors"
	"devreload/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error a handler recorded with c.Error.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, code := classify(err)
		if l != nil {
			l.ErrorContext(c.Request.Context(), "request error",
				zap.String("code", code),
				zap.Int("status", status),
				zap.Error(err))
		}
		requestID, _ := c.Request.Context().Value(logger.RequestIdKey).(string)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code).WithRequestID(requestID))
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, devreload_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, devreload_errors.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, devreload_errors.ErrHubClosed):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
