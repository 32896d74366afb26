package services

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/config"
	"github.com/fntelecomllc/rankingengine/internal/domain/core"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type fakeRetrievalStore struct {
	rows []store.CandidateRow
}

func (f *fakeRetrievalStore) Search(context.Context, store.Querier, pgvector.Vector, store.RetrievalFilter, int, int) ([]store.CandidateRow, error) {
	return f.rows, nil
}

func (f *fakeRetrievalStore) RetrieveByIDs(context.Context, store.Querier, []uuid.UUID) ([]store.CandidateRow, error) {
	return f.rows, nil
}

func newTestPipeline(rows []store.CandidateRow) *PipelineService {
	logger := logging.NewStdLogger()
	embeddings := NewEmbeddingProvider("http://unused.invalid", "", "test-model", 3, 1, 1, time.Minute, nil, logger)
	retrieval := NewRetrievalService(embeddings, &fakeRetrievalStore{rows: rows}, nil, 40, logger)

	bc := core.NewPositionBiasCorrector(nil, 0.01, 20)
	sampler := core.NewThompsonSampler(1, 1, 0.1, rand.New(rand.NewSource(1)))
	weights := config.WeightsConfig{Semantic: 0.5, Popularity: 0.25, Exploration: 0.15, Freshness: 0.10}
	ranking := NewRankingService(bc, sampler, weights, true, 0.01)

	reranker := NewNeuralReranker(UnavailableRerankerBackend{}, 4, 1000, logger)
	diversity := NewDiversityService(core.NewMMRDiversifier(0.5, nil), 1)

	return NewPipelineService(retrieval, ranking, reranker, diversity, 50, 30, 0.6)
}

func makeRow(genre string, distance float64) store.CandidateRow {
	return store.CandidateRow{
		OutputID:       uuid.New(),
		SongID:         uuid.New(),
		Title:          "song",
		Embedding:      pgvector.NewVector([]float32{1, 0, 0}),
		CosineDistance: distance,
		PrimaryGenre:   sql.NullString{String: genre, Valid: true},
	}
}

func TestPipelineSearchReturnsOrderedResults(t *testing.T) {
	rows := []store.CandidateRow{
		makeRow("rock", 0.1),
		makeRow("pop", 0.5),
		makeRow("jazz", 0.9),
	}
	pipeline := newTestPipeline(rows)

	result, err := pipeline.Search(context.Background(), "", SearchFilter{}, 40, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCandidates != 3 {
		t.Fatalf("expected 3 total candidates, got %d", result.TotalCandidates)
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected 3 results since pool <= k, got %d", len(result.Results))
	}
	if result.Results[0].SemanticScore < result.Results[1].SemanticScore {
		t.Fatalf("expected results sorted by descending score, got %+v", result.Results)
	}
}

func TestPipelineSearchPropagatesEmbeddingFailure(t *testing.T) {
	pipeline := newTestPipeline(nil)
	_, err := pipeline.Search(context.Background(), "   a real query that will try the network   ", SearchFilter{}, 40, 10)
	if err == nil {
		t.Fatal("expected error from unreachable embedding provider")
	}
}
