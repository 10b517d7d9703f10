package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/observability"
)

// unmatchedRoute keeps 404 probes from minting one series per raw path.
const unmatchedRoute = "unmatched"

// Metrics records request counts and latency by route template. Scrapes of skip routes are not counted.
func Metrics(m *observability.Metrics, skip ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipped[s] = struct{}{}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			c.Next()
			return
		}
		if route == "" {
			route = unmatchedRoute
		}

		m.ApiInflightInc()
		start := time.Now()
		c.Next()
		m.ApiInflightDec()

		m.ObserveAPI(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
