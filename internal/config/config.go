// Package config loads environment-bound configuration for the ranking
// engine, with typed defaults and boot-time validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string
	GinMode     string
	CORSOrigins []string
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	DSN                    string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
}

// CacheConfig holds the cache backend settings for the embedding cache.
type CacheConfig struct {
	RedisURL            string
	EmbeddingTTLSeconds int
}

// EmbeddingConfig holds the external embedding provider settings.
type EmbeddingConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Dimension      int
	TimeoutSeconds int
	MaxRetries     int
}

// RetrievalConfig holds ANN retrieval tuning.
type RetrievalConfig struct {
	EfSearch          int
	CandidatePoolSize int
}

// WeightsConfig holds the composite-score weights for RankingService. The
// four weights must sum to 1.0 within DefaultWeightSumTolerance.
type WeightsConfig struct {
	Semantic    float64
	Popularity  float64
	Exploration float64
	Freshness   float64
}

// RankingConfig holds C1/C2/C6 tuning parameters.
type RankingConfig struct {
	Weights            WeightsConfig
	RankingPoolSize    int
	ThompsonPriorAlpha float64
	ThompsonPriorBeta  float64
	ExplorationBoost   float64
	UseUCB             bool
	FreshnessDecayRate float64
	MaxIPWWeight       float64
	PropensityFloor    float64
	PropensityFallback float64
	Propensities       map[int]float64
}

// RerankerConfig holds C7 tuning.
type RerankerConfig struct {
	Enabled        bool
	Endpoint       string
	TopK           int
	BlendWeight    float64
	WorkerPoolSize int
	MinCandidates  int
}

// DiversityConfig holds C3/C8 tuning.
type DiversityConfig struct {
	Lambda      float64
	MinPerGenre int
	ResultSize  int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// StatsWorkerConfig holds the cmd/statsworker cadence.
type StatsWorkerConfig struct {
	IntervalSeconds           int
	PropensityCalibrationDays int
}

// AppConfig is the top-level configuration for all ranking-engine binaries.
type AppConfig struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Embedding   EmbeddingConfig
	Retrieval   RetrievalConfig
	Ranking     RankingConfig
	Reranker    RerankerConfig
	Diversity   DiversityConfig
	Logging     LoggingConfig
	StatsWorker StatsWorkerConfig
}

// Load builds an AppConfig from environment variables (and a .env file, if
// present, loaded by the caller via godotenv before Load runs), applying
// typed defaults for anything unset, then validates it.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", DefaultServerPort),
			GinMode:     getEnv("GIN_MODE", DefaultGinMode),
			CORSOrigins: getEnvList("CORS_ORIGINS", nil),
		},
		Database: DatabaseConfig{
			DSN:                    getEnv("DATABASE_URL", "postgres://localhost:5432/rankingengine?sslmode=disable"),
			MaxOpenConns:           getEnvInt("DB_MAX_OPEN_CONNS", DefaultDBMaxOpenConns),
			MaxIdleConns:           getEnvInt("DB_MAX_IDLE_CONNS", DefaultDBMaxIdleConns),
			ConnMaxLifetimeSeconds: getEnvInt("DB_CONN_MAX_LIFETIME_SECONDS", DefaultDBConnMaxLifetimeSeconds),
		},
		Cache: CacheConfig{
			RedisURL:            getEnv("REDIS_URL", ""),
			EmbeddingTTLSeconds: getEnvInt("EMBEDDING_CACHE_TTL_SECONDS", DefaultEmbeddingCacheTTLSeconds),
		},
		Embedding: EmbeddingConfig{
			BaseURL:        getEnv("EMBEDDING_BASE_URL", ""),
			APIKey:         getEnv("EMBEDDING_API_KEY", ""),
			Model:          getEnv("EMBEDDING_MODEL", DefaultEmbeddingModel),
			Dimension:      getEnvInt("EMBEDDING_DIMENSION", DefaultEmbeddingDimension),
			TimeoutSeconds: getEnvInt("EMBEDDING_TIMEOUT_SECONDS", DefaultEmbeddingTimeoutSeconds),
			MaxRetries:     getEnvInt("EMBEDDING_MAX_RETRIES", DefaultEmbeddingMaxRetries),
		},
		Retrieval: RetrievalConfig{
			EfSearch:          getEnvInt("HNSW_EF_SEARCH", DefaultHNSWEfSearch),
			CandidatePoolSize: getEnvInt("CANDIDATE_POOL_SIZE", DefaultCandidatePoolSize),
		},
		Ranking: RankingConfig{
			Weights: WeightsConfig{
				Semantic:    getEnvFloat("WEIGHT_SEMANTIC", DefaultSemanticWeight),
				Popularity:  getEnvFloat("WEIGHT_POPULARITY", DefaultPopularityWeight),
				Exploration: getEnvFloat("WEIGHT_EXPLORATION", DefaultExplorationWeight),
				Freshness:   getEnvFloat("WEIGHT_FRESHNESS", DefaultFreshnessWeight),
			},
			RankingPoolSize:    getEnvInt("RANKING_POOL_SIZE", DefaultRankingPoolSize),
			ThompsonPriorAlpha: getEnvFloat("THOMPSON_PRIOR_ALPHA", DefaultThompsonPriorAlpha),
			ThompsonPriorBeta:  getEnvFloat("THOMPSON_PRIOR_BETA", DefaultThompsonPriorBeta),
			ExplorationBoost:   getEnvFloat("EXPLORATION_BOOST", DefaultExplorationBoost),
			UseUCB:             getEnvBool("USE_UCB", DefaultUseUCB),
			FreshnessDecayRate: getEnvFloat("FRESHNESS_DECAY_RATE", DefaultFreshnessDecayRate),
			MaxIPWWeight:       getEnvFloat("MAX_IPW_WEIGHT", DefaultMaxIPWWeight),
			PropensityFloor:    getEnvFloat("PROPENSITY_FLOOR", DefaultPropensityFloor),
			PropensityFallback: getEnvFloat("PROPENSITY_FALLBACK", DefaultPropensityFallback),
			Propensities:       getEnvPropensityTable("PROPENSITY_TABLE_JSON"),
		},
		Reranker: RerankerConfig{
			Enabled:        getEnvBool("NEURAL_RERANK_ENABLED", DefaultNeuralRerankEnabled),
			Endpoint:       getEnv("RERANKER_ENDPOINT", ""),
			TopK:           getEnvInt("RERANK_TOP_K", DefaultRerankTopK),
			BlendWeight:    getEnvFloat("NEURAL_BLEND_WEIGHT", DefaultNeuralBlendWeight),
			WorkerPoolSize: getEnvInt("RERANKER_WORKER_POOL_SIZE", DefaultRerankerWorkerPoolSize),
			MinCandidates:  10,
		},
		Diversity: DiversityConfig{
			Lambda:      getEnvFloat("MMR_LAMBDA", DefaultMMRLambda),
			MinPerGenre: getEnvInt("MMR_MIN_PER_GENRE", DefaultMinPerGenre),
			ResultSize:  getEnvInt("RESULT_SIZE", DefaultResultSize),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", DefaultLogLevel),
		},
		StatsWorker: StatsWorkerConfig{
			IntervalSeconds:           getEnvInt("STATS_WORKER_INTERVAL_SECONDS", DefaultStatsWorkerIntervalSeconds),
			PropensityCalibrationDays: getEnvInt("PROPENSITY_CALIBRATION_DAYS", DefaultPropensityCalibrationDays),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvPropensityTable parses an optional JSON object of
// {"position": propensity} overrides, e.g. {"1":1.0,"2":0.7}. Returns nil
// (meaning "use core.DefaultPropensities") when unset or malformed.
func getEnvPropensityTable(key string) map[int]float64 {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var raw map[string]float64
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		return nil
	}
	table := make(map[int]float64, len(raw))
	for k, f := range raw {
		pos, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		table[pos] = f
	}
	return table
}

func getEnvList(key string, defaultValue []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
