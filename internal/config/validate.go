package config

import "fmt"

// Validate checks an AppConfig for boot-fatal problems. Scoring weights
// must sum to 1.0 within DefaultWeightSumTolerance; boot fails rather than
// silently renormalizing a misconfigured weight set.
func Validate(cfg *AppConfig) error {
	if cfg.Database.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Embedding.Dimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Embedding.BaseURL == "" {
		return fmt.Errorf("EMBEDDING_BASE_URL is required")
	}

	w := cfg.Ranking.Weights
	sum := w.Semantic + w.Popularity + w.Exploration + w.Freshness
	if diff := sum - 1.0; diff > DefaultWeightSumTolerance || diff < -DefaultWeightSumTolerance {
		return fmt.Errorf("ranking weights must sum to 1.0, got %.6f (semantic=%.3f popularity=%.3f exploration=%.3f freshness=%.3f)",
			sum, w.Semantic, w.Popularity, w.Exploration, w.Freshness)
	}

	if cfg.Diversity.Lambda < 0 || cfg.Diversity.Lambda > 1 {
		return fmt.Errorf("MMR_LAMBDA must be in [0,1], got %v", cfg.Diversity.Lambda)
	}
	if cfg.Reranker.Enabled && cfg.Reranker.Endpoint == "" {
		return fmt.Errorf("RERANKER_ENDPOINT is required when NEURAL_RERANK_ENABLED=true")
	}
	if cfg.Reranker.BlendWeight < 0 || cfg.Reranker.BlendWeight > 1 {
		return fmt.Errorf("NEURAL_BLEND_WEIGHT must be in [0,1], got %v", cfg.Reranker.BlendWeight)
	}
	if cfg.Diversity.ResultSize <= 0 {
		return fmt.Errorf("RESULT_SIZE must be positive, got %d", cfg.Diversity.ResultSize)
	}

	return nil
}
