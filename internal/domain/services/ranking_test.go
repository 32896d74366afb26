package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/config"
	"github.com/fntelecomllc/rankingengine/internal/domain/core"
)

func newTestRankingService() *RankingService {
	bc := core.NewPositionBiasCorrector(nil, 0.01, 20)
	sampler := core.NewThompsonSampler(1, 1, 0.1, rand.New(rand.NewSource(1)))
	weights := config.WeightsConfig{Semantic: 0.5, Popularity: 0.25, Exploration: 0.15, Freshness: 0.10}
	svc := NewRankingService(bc, sampler, weights, true, 0.01)
	svc.now = func() time.Time { return time.Unix(1000*86400, 0) }
	return svc
}

func TestRankSortsDescendingByComposite(t *testing.T) {
	svc := newTestRankingService()
	candidates := []Candidate{
		{OutputID: mustUUID("1"), SemanticScore: 0.1},
		{OutputID: mustUUID("2"), SemanticScore: 0.9},
	}
	ranked := svc.Rank(candidates, 10)
	if ranked[0].SemanticScore != 0.9 {
		t.Fatalf("expected higher semantic score first, got %+v", ranked[0])
	}
}

func TestRankDefaultsPopularityWhenNoImpressions(t *testing.T) {
	svc := newTestRankingService()
	candidates := []Candidate{{OutputID: mustUUID("1"), ImpressionCount: 0}}
	ranked := svc.Rank(candidates, 10)
	if ranked[0].PopularityScore != 0.5 {
		t.Fatalf("expected default popularity 0.5, got %v", ranked[0].PopularityScore)
	}
}

func TestRankTruncatesToPoolSize(t *testing.T) {
	svc := newTestRankingService()
	candidates := make([]Candidate, 5)
	for i := range candidates {
		candidates[i] = Candidate{OutputID: mustUUID("x")}
	}
	ranked := svc.Rank(candidates, 3)
	if len(ranked) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(ranked))
	}
}

func TestRankFreshnessDefaultsWhenNoCreatedAt(t *testing.T) {
	svc := newTestRankingService()
	candidates := []Candidate{{OutputID: mustUUID("1"), HasCreatedAt: false}}
	ranked := svc.Rank(candidates, 10)
	if ranked[0].FreshnessScore != 0.5 {
		t.Fatalf("expected default freshness 0.5, got %v", ranked[0].FreshnessScore)
	}
}
