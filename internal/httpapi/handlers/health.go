package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/cache"
	"github.com/fntelecomllc/rankingengine/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler serves the liveness/readiness endpoints.
type HealthHandler struct {
	db      *sqlx.DB
	cache   cache.Store
	version string
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *sqlx.DB, cacheStore cache.Store, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheStore, version: version}
}

// Live serves GET /health and GET /: unconditional liveness, no dependency
// checks.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"resources": observability.SampleResources(),
	})
}

// Ready serves GET /healthz/ready: pings the database and cache. A
// degraded cache does not fail readiness, since the embedding path runs
// without it.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unavailable: " + err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	cacheMetrics := h.cache.Metrics()
	if err := h.cache.Ping(ctx); err != nil {
		checks["cache"] = gin.H{"status": "degraded: " + err.Error()}
	} else {
		checks["cache"] = gin.H{
			"status": "ok",
			"hits":   cacheMetrics.Hits,
			"misses": cacheMetrics.Misses,
			"errors": cacheMetrics.Errors,
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status": map[bool]string{true: "ready", false: "not_ready"}[ready],
		"checks": checks,
	})
}
