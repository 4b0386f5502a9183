package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tokamak-network/pages-deployer/pkg/metrics"
)

// Metrics records count and latency per matched route. Unmatched paths share
// one label so scanners cannot blow up cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
