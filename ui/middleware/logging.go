package middleware

import (
	"time"

	"causalnotes/internal"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through the leveled logger.
// Server errors log at WARN, everything else at DEBUG.
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			logger.Warn("[HTTP] %s %s -> %d (%s) %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.Errors.String())
			return
		}
		logger.Debug("[HTTP] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
