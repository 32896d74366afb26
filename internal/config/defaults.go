package config

const (
	DefaultServerPort = "8080"
	DefaultGinMode    = "release"
	DefaultLogLevel   = "info"

	DefaultDBMaxOpenConns           = 20
	DefaultDBMaxIdleConns           = 10
	DefaultDBConnMaxLifetimeSeconds = 3600

	DefaultEmbeddingDimension       = 1536
	DefaultEmbeddingModel           = "text-embedding-3-small"
	DefaultEmbeddingTimeoutSeconds  = 30
	DefaultEmbeddingMaxRetries      = 3
	DefaultEmbeddingCacheTTLSeconds = 3600

	DefaultHNSWEfSearch      = 100
	DefaultCandidatePoolSize = 500
	DefaultRankingPoolSize   = 50
	DefaultRerankTopK        = 30
	DefaultResultSize        = 20

	DefaultSemanticWeight    = 0.50
	DefaultPopularityWeight  = 0.25
	DefaultExplorationWeight = 0.15
	DefaultFreshnessWeight   = 0.10

	DefaultThompsonPriorAlpha = 1.0
	DefaultThompsonPriorBeta  = 1.0
	DefaultExplorationBoost   = 0.1
	DefaultUseUCB             = true
	DefaultFreshnessDecayRate = 0.01
	DefaultMMRLambda          = 0.7
	DefaultMinPerGenre        = 2
	DefaultMaxIPWWeight       = 20.0
	DefaultPropensityFloor    = 0.05
	DefaultPropensityFallback = 0.01

	DefaultNeuralRerankEnabled    = false
	DefaultNeuralBlendWeight      = 0.6
	DefaultRerankerWorkerPoolSize = 0 // 0 = runtime.NumCPU()

	DefaultStatsWorkerIntervalSeconds = 300
	DefaultPropensityCalibrationDays  = 14

	DefaultWeightSumTolerance = 1e-6
)
