package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicely/pkg/telemetry"
)

// MetricsMiddleware records request counts and latency by route template.
func MetricsMiddleware(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPIRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
