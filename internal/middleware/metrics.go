package middleware

import (
	"strconv"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency labelled by route template, so
// unmatched paths collapse into a single series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
