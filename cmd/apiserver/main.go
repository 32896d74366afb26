// Command apiserver runs the ranking engine's HTTP server: the online
// search and feedback request path described by the ranking pipeline.
package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/cache"
	"github.com/fntelecomllc/rankingengine/internal/config"
	"github.com/fntelecomllc/rankingengine/internal/domain/core"
	"github.com/fntelecomllc/rankingengine/internal/domain/services"
	"github.com/fntelecomllc/rankingengine/internal/httpapi"
	"github.com/fntelecomllc/rankingengine/internal/httpapi/handlers"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/observability"
	"github.com/fntelecomllc/rankingengine/internal/store/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	log.Println("starting rankingengine apiserver...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, continuing with process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewStdLogger()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeSeconds) * time.Second)

	cacheStore := newCacheStore(cfg.Cache, logger)
	defer cacheStore.Close()

	observability.InitTracer("rankingengine")
	metrics := observability.NewMetricsCollector(nil)

	retrievalStore := postgres.NewRetrievalStorePostgres(db)
	statsStore := postgres.NewStatisticsStorePostgres(db)
	interactionStore := postgres.NewInteractionStorePostgres(db)

	embeddings := services.NewEmbeddingProvider(
		cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimension,
		cfg.Embedding.TimeoutSeconds, cfg.Embedding.MaxRetries, time.Duration(cfg.Cache.EmbeddingTTLSeconds)*time.Second,
		cacheStore, logger,
	)
	retrieval := services.NewRetrievalService(embeddings, retrievalStore, db, cfg.Retrieval.EfSearch, logger)

	propensities := cfg.Ranking.Propensities
	if propensities == nil {
		propensities = core.DefaultPropensities
	}
	biasCorrector := core.NewPositionBiasCorrector(propensities, cfg.Ranking.PropensityFloor, cfg.Ranking.MaxIPWWeight)
	sampler := core.NewThompsonSampler(cfg.Ranking.ThompsonPriorAlpha, cfg.Ranking.ThompsonPriorBeta, cfg.Ranking.ExplorationBoost, rand.New(rand.NewSource(time.Now().UnixNano())))
	ranking := services.NewRankingService(biasCorrector, sampler, cfg.Ranking.Weights, cfg.Ranking.UseUCB, cfg.Ranking.FreshnessDecayRate)

	var rerankerBackend services.RerankerBackend = services.UnavailableRerankerBackend{}
	if cfg.Reranker.Enabled {
		rerankerBackend = services.NewHTTPRerankerBackend(cfg.Reranker.Endpoint, cfg.Embedding.TimeoutSeconds)
	}
	reranker := services.NewNeuralReranker(rerankerBackend, cfg.Reranker.WorkerPoolSize, cfg.Reranker.MinCandidates, logger)

	diversity := services.NewDiversityService(core.NewMMRDiversifier(cfg.Diversity.Lambda, nil), cfg.Diversity.MinPerGenre)

	pipeline := services.NewPipelineService(retrieval, ranking, reranker, diversity, cfg.Ranking.RankingPoolSize, cfg.Reranker.TopK, cfg.Reranker.BlendWeight)
	pipeline.SetStageObserver(metrics.ObservePipelineStage)
	feedback := services.NewFeedbackService(db, interactionStore, statsStore, logger)

	gin.SetMode(cfg.Server.GinMode)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Search:      handlers.NewSearchHandler(pipeline, feedback, cfg.Retrieval.CandidatePoolSize, cfg.Diversity.ResultSize, logger),
		Feedback:    handlers.NewFeedbackHandler(feedback),
		Health:      handlers.NewHealthHandler(db, cacheStore, "1.0.0"),
		Metrics:     metrics,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	log.Printf("apiserver listening on %s (gin mode %s)", srv.Addr, cfg.Server.GinMode)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down apiserver...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("apiserver exited gracefully")
}

// newCacheStore connects to Redis when configured, falling back to the
// in-process cache when the URL is unset, invalid or unreachable at boot, so
// an unavailable Redis never fails startup; embeddings are then cached in
// this process only.
func newCacheStore(cfg config.CacheConfig, logger logging.Logger) cache.Store {
	if cfg.RedisURL == "" {
		return cache.NewMemoryStore(time.Duration(cfg.EmbeddingTTLSeconds)*time.Second, 10*time.Minute)
	}
	redisStore, err := cache.NewRedisStore(cfg.RedisURL)
	if err != nil {
		logger.Warn(context.Background(), "invalid redis url, falling back to in-process cache", logging.Fields{"error": err.Error()})
		return cache.NewMemoryStore(time.Duration(cfg.EmbeddingTTLSeconds)*time.Second, 10*time.Minute)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisStore.Ping(pingCtx); err != nil {
		logger.Warn(context.Background(), "redis unreachable at boot, falling back to in-process cache", logging.Fields{"error": err.Error()})
		_ = redisStore.Close()
		return cache.NewMemoryStore(time.Duration(cfg.EmbeddingTTLSeconds)*time.Second, 10*time.Minute)
	}
	return redisStore
}
