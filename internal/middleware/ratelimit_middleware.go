package middleware

import (
	"strconv"

	devreload_errors "devreload/pkg/errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware rejects requests once limiter runs out of tokens.
// Reload triggers share one limiter so a save storm cannot flood pages.
// The 429 body itself comes from ErrorHandler.
func RateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed := limiter.Allow()
		setRateLimitHeaders(c, limiter)

		if !allowed {
			c.Header("Retry-After", "1")
			_ = c.Error(devreload_errors.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets the standard rate limit headers
func setRateLimitHeaders(c *gin.Context, limiter *rate.Limiter) {
	remaining := int(limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
}
