package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

// RequestLogger writes one line per request. quiet routes (health probes) log at debug.
func RequestLogger(log *logger.Logger, quiet ...string) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	quietRoutes := make(map[string]bool, len(quiet))
	for _, q := range quiet {
		quietRoutes[q] = true
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if route != "" && route != c.Request.URL.Path {
			fields = append(fields, "route", route)
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, "kernel_id", id)
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd.Authenticated() {
			fields = append(fields, "user_id", rd.UserID.String())
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
