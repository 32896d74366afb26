package middleware

import (
	"fmt"
	"net/http"

	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/gin-gonic/gin"
)

// Recovery converts a panic in a handler into a 500 response and a logged
// error, instead of crashing the process.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "http.request.panic", fmt.Errorf("panic: %v", rec), logging.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
