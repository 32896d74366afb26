package core

import (
	"math"
	"testing"
)

func TestPropensityFallsBackToDefault(t *testing.T) {
	c := NewPositionBiasCorrector(nil, 0.01, 20)
	if p := c.Propensity(1); p != 1.0 {
		t.Fatalf("expected position 1 propensity 1.0, got %v", p)
	}
	if p := c.Propensity(999); p != 0.01 {
		t.Fatalf("expected default propensity for unlisted position, got %v", p)
	}
}

func TestIPWWeightClampedToMax(t *testing.T) {
	c := NewPositionBiasCorrector(map[int]float64{1: 0.001}, 0.01, 20)
	if w := c.IPWWeight(1); w != 20 {
		t.Fatalf("expected weight clamped to max 20, got %v", w)
	}
}

func TestDebiasedCTREmptyReturnsPriorMidpoint(t *testing.T) {
	c := NewPositionBiasCorrector(nil, 0.01, 20)
	m := c.DebiasedCTR(nil)
	if m.DebiasedCTR != 0.5 {
		t.Fatalf("expected 0.5 prior for no events, got %v", m.DebiasedCTR)
	}
}

func TestDebiasedCTRClampedToOne(t *testing.T) {
	c := NewPositionBiasCorrector(nil, 0.01, 20)
	events := []ClickEvent{
		{Position: 20, Clicked: true},
		{Position: 20, Clicked: true},
	}
	m := c.DebiasedCTR(events)
	if m.DebiasedCTR > 1.0 {
		t.Fatalf("expected ctr clamped to 1.0, got %v", m.DebiasedCTR)
	}
	if m.RawClicks != 2 || m.RawImpressions != 2 {
		t.Fatalf("unexpected raw counters: %+v", m)
	}
}

func TestSimplifiedDebiasedCTRZeroImpressions(t *testing.T) {
	c := NewPositionBiasCorrector(nil, 0.01, 20)
	if got := c.SimplifiedDebiasedCTR(0, 0, 0); got != 0.5 {
		t.Fatalf("expected 0.5 for zero impressions, got %v", got)
	}
}

func TestSimplifiedDebiasedCTRAggregateExample(t *testing.T) {
	c := NewPositionBiasCorrector(nil, 0.05, 20)
	// 10 clicks over 100 impressions with position_sum 200: avg position 2,
	// propensity 0.70, raw ctr 0.10 -> debiased 0.10/0.70.
	got := c.SimplifiedDebiasedCTR(10, 100, 200)
	want := 0.10 / 0.70
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected debiased ctr %v, got %v", want, got)
	}
}

func TestSimplifiedDebiasedCTRRoundsAveragePosition(t *testing.T) {
	c := NewPositionBiasCorrector(nil, 0.01, 20)
	// position_sum/impressions = 1.5 rounds to 2 (propensity 0.70), not 1.
	got := c.SimplifiedDebiasedCTR(1, 2, 3)
	want := math.Min(1.0, (1.0/2.0)/0.70)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected rounded-position lookup %v, got %v", want, got)
	}
}

func TestCalibratePropensitiesNormalizesToPositionOne(t *testing.T) {
	events := []ClickEvent{
		{Position: 1, Clicked: true},
		{Position: 1, Clicked: false},
		{Position: 2, Clicked: true},
		{Position: 2, Clicked: false},
		{Position: 2, Clicked: false},
		{Position: 2, Clicked: false},
	}
	table := CalibratePropensities(events, 1.0)
	if table[1] != 1.0 {
		t.Fatalf("expected position 1 normalized to 1.0, got %v", table[1])
	}
	if table[2] >= table[1] {
		t.Fatalf("expected position 2 propensity lower than position 1, got %v", table[2])
	}
}

func TestCalibratePropensitiesReturnsEmptyWhenPositionOneHasNoClicks(t *testing.T) {
	events := []ClickEvent{
		{Position: 1, Clicked: false},
		{Position: 1, Clicked: false},
	}
	table := CalibratePropensities(events, 0)
	if len(table) != 0 {
		t.Fatalf("expected empty table when position 1 ctr is zero, got %+v", table)
	}
}
