// Package core implements the pure, side-effect-free scoring primitives
// shared by the ranking pipeline: position-bias correction, exploration
// scoring, and diversity selection.
package core

import "math"

// DefaultPropensities is the bootstrap position -> click propensity table,
// relative to position 1. Positions beyond 20 fall back to
// PositionBiasCorrector.defaultPropensity.
var DefaultPropensities = map[int]float64{
	1: 1.00, 2: 0.70, 3: 0.50, 4: 0.35, 5: 0.25,
	6: 0.18, 7: 0.13, 8: 0.10, 9: 0.08, 10: 0.06,
	11: 0.05, 12: 0.04, 13: 0.035, 14: 0.03, 15: 0.025,
	16: 0.02, 17: 0.018, 18: 0.016, 19: 0.014, 20: 0.012,
}

// DebiasedMetrics is the result of a per-event debiased CTR computation.
type DebiasedMetrics struct {
	RawClicks       int
	RawImpressions  int
	DebiasedClicks  float64
	DebiasedCTR     float64
	AveragePosition float64
	Confidence      float64
}

// ClickEvent is one impression, optionally a click, at a given display
// position.
type ClickEvent struct {
	Position int
	Clicked  bool
}

// PositionBiasCorrector performs inverse-propensity-weighted (IPW)
// debiasing of click-through rates against display position effects.
type PositionBiasCorrector struct {
	propensities      map[int]float64
	defaultPropensity float64
	maxIPWWeight      float64
}

// NewPositionBiasCorrector constructs a corrector. A nil propensities map
// uses DefaultPropensities.
func NewPositionBiasCorrector(propensities map[int]float64, defaultPropensity, maxIPWWeight float64) *PositionBiasCorrector {
	if propensities == nil {
		propensities = DefaultPropensities
	}
	return &PositionBiasCorrector{
		propensities:      propensities,
		defaultPropensity: defaultPropensity,
		maxIPWWeight:      maxIPWWeight,
	}
}

// Propensity returns the click propensity for a display position, falling
// back to the configured default for unlisted positions.
func (c *PositionBiasCorrector) Propensity(position int) float64 {
	if p, ok := c.propensities[position]; ok {
		return p
	}
	return c.defaultPropensity
}

// IPWWeight returns the inverse-propensity weight for a position, clamped
// to maxIPWWeight to bound the influence of any single rare-position click.
func (c *PositionBiasCorrector) IPWWeight(position int) float64 {
	weight := 1.0 / math.Max(c.Propensity(position), 0.01)
	return math.Min(weight, c.maxIPWWeight)
}

// DebiasedCTR computes a precise debiased CTR from a sequence of per-event
// (position, clicked) pairs. Used offline by StatisticsService, and by
// tests; the online hot path uses SimplifiedDebiasedCTR instead.
func (c *PositionBiasCorrector) DebiasedCTR(events []ClickEvent) DebiasedMetrics {
	if len(events) == 0 {
		return DebiasedMetrics{DebiasedCTR: 0.5}
	}

	var rawClicks int
	var debiasedClicks, totalWeight, positionSum float64
	for _, e := range events {
		w := c.IPWWeight(e.Position)
		totalWeight += w
		positionSum += float64(e.Position)
		if e.Clicked {
			rawClicks++
			debiasedClicks += w
		}
	}

	rawImpressions := len(events)
	debiasedCTR := debiasedClicks / math.Max(totalWeight, 1e-6)

	return DebiasedMetrics{
		RawClicks:       rawClicks,
		RawImpressions:  rawImpressions,
		DebiasedClicks:  debiasedClicks,
		DebiasedCTR:     math.Min(1.0, debiasedCTR),
		AveragePosition: positionSum / float64(rawImpressions),
		Confidence:      math.Min(1.0, math.Sqrt(float64(rawImpressions))/10),
	}
}

// SimplifiedDebiasedCTR is the cheap, online-path debiased CTR used by
// RankingService: it rounds the average display position and looks up a
// single propensity rather than weighting each impression individually.
// Items shown only at positions outside the propensity table divide by the
// default floor, which can overstate their CTR; DebiasedCTR is the precise
// per-event form.
func (c *PositionBiasCorrector) SimplifiedDebiasedCTR(clicks, impressions, positionSum int64) float64 {
	if impressions == 0 {
		return 0.5
	}
	avgPosition := float64(positionSum) / float64(impressions)
	avgPropensity := c.Propensity(int(math.Round(avgPosition)))
	rawCTR := float64(clicks) / float64(impressions)
	debiasedCTR := rawCTR / math.Max(avgPropensity, 0.01)
	return math.Min(1.0, debiasedCTR)
}

// CalibratePropensities derives a fresh propensity table from a window of
// click data, relative to position 1's CTR. When position 1 has zero
// observed clicks the caller should keep the previous table; this function
// returns an empty map in that case so the caller can detect it.
func CalibratePropensities(events []ClickEvent, smoothing float64) map[int]float64 {
	clicksByPos := map[int]float64{}
	impressionsByPos := map[int]float64{}
	for _, e := range events {
		impressionsByPos[e.Position]++
		if e.Clicked {
			clicksByPos[e.Position]++
		}
	}
	return CalibratePropensitiesFromAggregates(impressionsByPos, clicksByPos, smoothing)
}

// CalibratePropensitiesFromAggregates is the aggregate-counts form of
// CalibratePropensities, used by StatisticsService which reads pre-summed
// per-position counts rather than a raw event log.
func CalibratePropensitiesFromAggregates(impressionsByPos, clicksByPos map[int]float64, smoothing float64) map[int]float64 {
	ctrByPos := map[int]float64{}
	for pos, impressions := range impressionsByPos {
		ctrByPos[pos] = (clicksByPos[pos] + smoothing) / (impressions + 2*smoothing)
	}

	ctr1, ok := ctrByPos[1]
	if !ok || clicksByPos[1] == 0 {
		return map[int]float64{}
	}

	propensities := make(map[int]float64, len(ctrByPos))
	for pos, ctr := range ctrByPos {
		propensities[pos] = ctr / ctr1
	}
	propensities[1] = 1.0
	return propensities
}
