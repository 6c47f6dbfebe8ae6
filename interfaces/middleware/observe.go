package middleware

import (
	"strconv"
	"time"

	"propgen/infrastructure/logger"
	"propgen/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Observe records request metrics and writes one access log line per request.
// Routes are labelled by their pattern so ids do not explode label cardinality.
func Observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		m.ObserveHTTP(c.Request.Method, path, strconv.Itoa(status), elapsed.Seconds())

		entry := logger.GetLogger().WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     path,
			"status":   status,
			"duration": elapsed.String(),
			"user_id":  c.GetString(UserIDKey),
		})
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
