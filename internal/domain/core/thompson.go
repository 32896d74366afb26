package core

import (
	"math"
	"math/rand"
)

// ThompsonSample is the result of one Beta-posterior draw for an item.
type ThompsonSample struct {
	SampledCTR       float64
	MeanCTR          float64
	Variance         float64
	ExplorationBonus float64
}

// ExplorationTier buckets an item by how much Thompson sampling should
// still be exploring it. Diagnostics only; it does not branch the score
// itself.
type ExplorationTier string

const (
	TierCold ExplorationTier = "cold"
	TierWarm ExplorationTier = "warm"
	TierHot  ExplorationTier = "hot"
)

// ThompsonSampler implements Beta-Bernoulli Thompson Sampling for
// exploration/exploitation scoring of under-observed items.
type ThompsonSampler struct {
	priorAlpha       float64
	priorBeta        float64
	explorationBoost float64
	rng              *rand.Rand
}

// NewThompsonSampler constructs a sampler with the given Beta priors and
// exploration-bonus coefficient. A nil rng is replaced by a private source
// with the fixed seed 1; tests should pass a seeded *rand.Rand for
// determinism.
func NewThompsonSampler(priorAlpha, priorBeta, explorationBoost float64, rng *rand.Rand) *ThompsonSampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &ThompsonSampler{
		priorAlpha:       priorAlpha,
		priorBeta:        priorBeta,
		explorationBoost: explorationBoost,
		rng:              rng,
	}
}

// BetaParameters returns the posterior Beta(alpha, beta) parameters for an
// item with k clicks out of n impressions.
func (s *ThompsonSampler) BetaParameters(clicks, impressions int64) (alpha, beta float64) {
	alpha = s.priorAlpha + float64(clicks)
	beta = s.priorBeta + math.Max(float64(impressions-clicks), 0)
	return alpha, beta
}

// Sample draws a CTR sample from the Beta posterior along with its mean,
// variance, and an exploration bonus proportional to posterior uncertainty.
func (s *ThompsonSampler) Sample(clicks, impressions int64) ThompsonSample {
	alpha, beta := s.BetaParameters(clicks, impressions)
	variance := (alpha * beta) / (math.Pow(alpha+beta, 2) * (alpha + beta + 1))
	return ThompsonSample{
		SampledCTR:       s.sampleBeta(alpha, beta),
		MeanCTR:          alpha / (alpha + beta),
		Variance:         variance,
		ExplorationBonus: s.explorationBoost * math.Sqrt(variance),
	}
}

// ExplorationScore returns a [0,1] exploration score for an item. In UCB
// mode it returns mean + 2*stddev, clamped; otherwise it returns a fresh
// Beta draw.
func (s *ThompsonSampler) ExplorationScore(clicks, impressions int64, useUCB bool) float64 {
	alpha, beta := s.BetaParameters(clicks, impressions)
	if useUCB {
		mean := alpha / (alpha + beta)
		variance := (alpha * beta) / (math.Pow(alpha+beta, 2) * (alpha + beta + 1))
		return math.Min(1.0, mean+2*math.Sqrt(variance))
	}
	return s.sampleBeta(alpha, beta)
}

// sampleBeta draws from Beta(alpha, beta) via the standard ratio-of-Gammas
// construction: if X ~ Gamma(alpha, 1) and Y ~ Gamma(beta, 1) independently,
// then X/(X+Y) ~ Beta(alpha, beta).
func (s *ThompsonSampler) sampleBeta(alpha, beta float64) float64 {
	x := s.sampleGamma(alpha)
	y := s.sampleGamma(beta)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// sampleGamma draws from Gamma(shape, 1) using Marsaglia and Tsang's
// rejection method (2000), boosting shapes below 1 by the standard
// Gamma(a+1) * U^(1/a) trick.
func (s *ThompsonSampler) sampleGamma(shape float64) float64 {
	if shape < 1 {
		return s.sampleGamma(shape+1) * math.Pow(s.rng.Float64(), 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// Tier categorizes an item by impression count for diagnostics.
func Tier(impressions int64) ExplorationTier {
	switch {
	case impressions < 10:
		return TierCold
	case impressions < 100:
		return TierWarm
	default:
		return TierHot
	}
}
