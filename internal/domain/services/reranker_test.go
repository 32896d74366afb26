package services

import (
	"context"
	"testing"

	"github.com/fntelecomllc/rankingengine/internal/logging"
)

type fakeRerankerBackend struct {
	available bool
	scoreFor  map[string]float64
	err       error
}

func (f *fakeRerankerBackend) Available() bool { return f.available }

func (f *fakeRerankerBackend) Score(_ context.Context, _ string, passage string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.scoreFor[passage], nil
}

func makeCandidates(n int) []Candidate {
	candidates := make([]Candidate, n)
	for i := range candidates {
		candidates[i] = Candidate{
			OutputID:       mustUUID(string(rune('a' + i))),
			Title:          "song",
			CompositeScore: float64(i) / float64(n),
		}
	}
	return candidates
}

func TestRerankFallsBackWhenBackendUnavailable(t *testing.T) {
	r := NewNeuralReranker(&fakeRerankerBackend{available: false}, 4, 10, logging.NewStdLogger())
	candidates := makeCandidates(15)
	result := r.Rerank(context.Background(), "query", candidates, 30, 0.6)
	for _, c := range result {
		if c.NeuralScore != nil {
			t.Fatalf("expected no neural score when backend unavailable, got %+v", c)
		}
		if c.FinalScore != c.CompositeScore {
			t.Fatalf("expected final score to equal composite score, got final=%v composite=%v", c.FinalScore, c.CompositeScore)
		}
	}
}

func TestRerankSkipsSmallCandidateSets(t *testing.T) {
	r := NewNeuralReranker(&fakeRerankerBackend{available: true}, 4, 10, logging.NewStdLogger())
	candidates := makeCandidates(5)
	result := r.Rerank(context.Background(), "query", candidates, 30, 0.6)
	if len(result) != 5 {
		t.Fatalf("expected all 5 candidates returned, got %d", len(result))
	}
	for _, c := range result {
		if c.NeuralScore != nil {
			t.Fatalf("expected neural rerank skipped for small set")
		}
	}
}

func TestRerankBlendsNeuralAndCompositeScores(t *testing.T) {
	backend := &fakeRerankerBackend{available: true, scoreFor: map[string]float64{"song": 10}}
	r := NewNeuralReranker(backend, 4, 10, logging.NewStdLogger())
	candidates := makeCandidates(12)
	result := r.Rerank(context.Background(), "query", candidates, 30, 0.6)
	for _, c := range result {
		if c.NeuralScore == nil {
			t.Fatalf("expected neural score set")
		}
		if *c.NeuralScore != 1.0 {
			t.Fatalf("expected normalized score (10+10)/20=1.0, got %v", *c.NeuralScore)
		}
	}
}

func TestRerankFallsBackOnBackendError(t *testing.T) {
	backend := &fakeRerankerBackend{available: true, err: errFakeBackend}
	r := NewNeuralReranker(backend, 4, 10, logging.NewStdLogger())
	candidates := makeCandidates(12)
	result := r.Rerank(context.Background(), "query", candidates, 30, 0.6)
	for _, c := range result {
		if c.FinalScore != c.CompositeScore {
			t.Fatalf("expected fallback to composite score on backend error")
		}
	}
}

func TestRerankTruncatesToTopK(t *testing.T) {
	backend := &fakeRerankerBackend{available: true, scoreFor: map[string]float64{"song": 5}}
	r := NewNeuralReranker(backend, 4, 10, logging.NewStdLogger())
	candidates := makeCandidates(20)
	result := r.Rerank(context.Background(), "query", candidates, 5, 0.6)
	if len(result) != 5 {
		t.Fatalf("expected truncation to topK=5, got %d", len(result))
	}
}

var errFakeBackend = &fakeError{"backend down"}

type fakeError struct{ msg string }

func (e *fakeError) Error() string { return e.msg }
