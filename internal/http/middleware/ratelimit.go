package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/http/response"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RateLimit throttles a route per client IP. A successful response clears the
// counter, so only failed attempts accumulate. Limiter failures let the request through.
func RateLimit(log *logger.Logger, limiter AttemptLimiter, scope string) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			if log != nil {
				log.Warn("rate limiter unavailable", "scope", scope, "error", err)
			}
			c.Next()
			return
		}
		if !ok {
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", errors.New("too many attempts, try again later"))
			c.Abort()
			return
		}
		c.Next()
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		if err := limiter.Reset(c.Request.Context(), key); err != nil && log != nil {
			log.Warn("rate limiter reset failed", "scope", scope, "error", err)
		}
	}
}
