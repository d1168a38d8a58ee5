package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/qially/portal/internal/observ"
)

// Metrics records one counter sample per request, labeled by method, route
// template, and status. c.FullPath() is the template ("/api/projects/:id"),
// not the raw URL, so cardinality stays bounded.
func Metrics(m *observ.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.APIRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
