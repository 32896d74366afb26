// Package httpapi builds the gin router exposing the ranking engine's
// HTTP surface.
package httpapi

import (
	"github.com/fntelecomllc/rankingengine/internal/httpapi/handlers"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/middleware"
	"github.com/fntelecomllc/rankingengine/internal/observability"
	"github.com/gin-gonic/gin"
)

// RouterDeps are the handlers and middleware inputs needed to build the
// apiserver's gin.Engine.
type RouterDeps struct {
	Search      *handlers.SearchHandler
	Feedback    *handlers.FeedbackHandler
	Health      *handlers.HealthHandler
	Metrics     *observability.MetricsCollector
	Logger      logging.Logger
	CORSOrigins []string
}

// NewRouter builds the gin.Engine exposing every route named in the
// external interfaces section: search, feedback, health, and metrics.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.RequestLogging(deps.Logger))
	router.Use(middleware.CORS(deps.CORSOrigins))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	router.GET("/", deps.Health.Live)
	router.GET("/health", deps.Health.Live)
	router.GET("/healthz/ready", deps.Health.Ready)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/search", deps.Search.Handle)
	v1.POST("/feedback/:output_id", deps.Feedback.Record)
	v1.GET("/feedback/:output_id/stats", deps.Feedback.Stats)

	return router
}
