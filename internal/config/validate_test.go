package config

import "testing"

func validConfig() *AppConfig {
	return &AppConfig{
		Database:  DatabaseConfig{DSN: "postgres://localhost/test"},
		Embedding: EmbeddingConfig{Dimension: 1536, BaseURL: "http://localhost:9000"},
		Ranking: RankingConfig{
			Weights: WeightsConfig{Semantic: 0.5, Popularity: 0.25, Exploration: 0.15, Freshness: 0.10},
		},
		Diversity: DiversityConfig{Lambda: 0.7, ResultSize: 20},
		Reranker:  RerankerConfig{BlendWeight: 0.6},
	}
}

func TestValidateAcceptsDefaultWeights(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsWeightsNotSummingToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Ranking.Weights.Semantic = 0.9
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}

func TestValidateRejectsMissingDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.DSN = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestValidateRejectsRerankerEnabledWithoutEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Reranker.Enabled = true
	cfg.Reranker.Endpoint = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for enabled reranker with no endpoint")
	}
}

func TestValidateRejectsLambdaOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Diversity.Lambda = 1.5
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for lambda out of [0,1]")
	}
}
