package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// RequestLogger logs one line per request with method, path, status and
// latency.
func RequestLogger(logger ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []ports.Field{
			ports.String("method", c.Request.Method),
			ports.String("path", c.Request.URL.Path),
			ports.Int("status", c.Writer.Status()),
			{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
		}
		if c.Writer.Status() >= 500 {
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request handled", fields...)
	}
}
