package services

import (
	"math"
	"sort"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/config"
	"github.com/fntelecomllc/rankingengine/internal/domain/core"
)

// RankingService implements C6: composite scoring that blends semantic
// similarity, debiased popularity, exploration, and freshness.
type RankingService struct {
	biasCorrector *core.PositionBiasCorrector
	sampler       *core.ThompsonSampler
	weights       config.WeightsConfig
	useUCB        bool
	decayRate     float64
	now           func() time.Time
}

// NewRankingService constructs a RankingService.
func NewRankingService(biasCorrector *core.PositionBiasCorrector, sampler *core.ThompsonSampler, weights config.WeightsConfig, useUCB bool, decayRate float64) *RankingService {
	return &RankingService{
		biasCorrector: biasCorrector,
		sampler:       sampler,
		weights:       weights,
		useUCB:        useUCB,
		decayRate:     decayRate,
		now:           time.Now,
	}
}

// Rank scores every candidate and returns them sorted by composite score
// descending, truncated to poolSize.
func (s *RankingService) Rank(candidates []Candidate, poolSize int) []Candidate {
	now := s.now()
	for i := range candidates {
		c := &candidates[i]

		if c.ImpressionCount > 0 {
			c.PopularityScore = s.biasCorrector.SimplifiedDebiasedCTR(c.ClickCount, c.ImpressionCount, c.PositionSum)
		} else {
			c.PopularityScore = 0.5
		}

		c.ExplorationScore = s.sampler.ExplorationScore(c.ClickCount, c.ImpressionCount, s.useUCB)

		if c.HasCreatedAt {
			ageDays := now.Sub(time.Unix(c.CreatedAtUnix, 0)).Hours() / 24
			c.FreshnessScore = math.Exp(-s.decayRate * math.Max(ageDays, 0))
		} else {
			c.FreshnessScore = 0.5
		}

		c.CompositeScore = s.weights.Semantic*c.SemanticScore +
			s.weights.Popularity*c.PopularityScore +
			s.weights.Exploration*c.ExplorationScore +
			s.weights.Freshness*c.FreshnessScore
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CompositeScore > candidates[j].CompositeScore
	})

	if poolSize > 0 && len(candidates) > poolSize {
		candidates = candidates[:poolSize]
	}
	return candidates
}
