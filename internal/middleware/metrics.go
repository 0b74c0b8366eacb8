package middleware

import (
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count, latency and in-flight requests. Requests that
// match no route are grouped under "unmatched" to bound label cardinality.
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.InFlightGauge.Inc()
		defer m.InFlightGauge.Dec()
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
