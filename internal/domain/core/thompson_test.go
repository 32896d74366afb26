package core

import (
	"math/rand"
	"testing"
)

func TestBetaParametersAddPriorsToObservedCounts(t *testing.T) {
	s := NewThompsonSampler(1, 1, 0.1, rand.New(rand.NewSource(42)))
	alpha, beta := s.BetaParameters(3, 10)
	if alpha != 4 {
		t.Fatalf("expected alpha=4, got %v", alpha)
	}
	if beta != 8 {
		t.Fatalf("expected beta=8, got %v", beta)
	}
}

func TestBetaParametersNeverNegativeBeta(t *testing.T) {
	s := NewThompsonSampler(1, 1, 0.1, rand.New(rand.NewSource(42)))
	// clicks > impressions should not drive beta negative.
	_, beta := s.BetaParameters(10, 5)
	if beta < 1 {
		t.Fatalf("expected beta floored at prior, got %v", beta)
	}
}

func TestExplorationScoreUCBBoundedToOne(t *testing.T) {
	s := NewThompsonSampler(1, 1, 0.1, rand.New(rand.NewSource(42)))
	score := s.ExplorationScore(1000, 1000, true)
	if score > 1.0 {
		t.Fatalf("expected UCB score clamped to 1.0, got %v", score)
	}
}

func TestExplorationScoreColdItemsHaveHighVariance(t *testing.T) {
	s := NewThompsonSampler(1, 1, 0.1, rand.New(rand.NewSource(42)))
	cold := s.Sample(0, 0)
	hot := s.Sample(500, 1000)
	if cold.Variance <= hot.Variance {
		t.Fatalf("expected cold item variance > hot item variance, got cold=%v hot=%v", cold.Variance, hot.Variance)
	}
}

func TestSampleBetaStaysInUnitInterval(t *testing.T) {
	s := NewThompsonSampler(1, 1, 0.1, rand.New(rand.NewSource(7)))
	for i := 0; i < 100; i++ {
		v := s.sampleBeta(2.5, 7.3)
		if v < 0 || v > 1 {
			t.Fatalf("beta sample out of [0,1]: %v", v)
		}
	}
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		impressions int64
		want        ExplorationTier
	}{
		{0, TierCold},
		{9, TierCold},
		{10, TierWarm},
		{99, TierWarm},
		{100, TierHot},
	}
	for _, c := range cases {
		if got := Tier(c.impressions); got != c.want {
			t.Errorf("Tier(%d) = %v, want %v", c.impressions, got, c.want)
		}
	}
}
