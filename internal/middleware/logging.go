// Package middleware holds the gin request-logging, panic-recovery, and
// CORS middleware shared by every route the apiserver exposes.
package middleware

import (
	"time"

	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogging emits a structured log line for every request, correlated
// by a request id minted here (or taken from an inbound X-Request-Id) and
// attached to the request context for downstream handlers and services.
func RequestLogging(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Writer.Header().Set("X-Request-Id", requestID)
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := logging.Fields{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        status,
			"duration_ms":   time.Since(start).Milliseconds(),
			"bytes_written": c.Writer.Size(),
			"remote_ip":     c.ClientIP(),
		}
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			fields["query"] = rawQuery
		}

		switch {
		case status >= 500:
			var err error
			if len(c.Errors) > 0 {
				err = c.Errors.Last()
			}
			logger.Error(ctx, "http.request", err, fields)
		case status >= 400:
			logger.Warn(ctx, "http.request", fields)
		default:
			logger.Info(ctx, "http.request", fields)
		}
	}
}
