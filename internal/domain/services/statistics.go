package services

import (
	"context"
	"fmt"

	"github.com/fntelecomllc/rankingengine/internal/domain/core"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/fntelecomllc/rankingengine/internal/store"
)

// StatisticsService implements C10: periodic CTR-estimate refresh and
// position-propensity recalibration, plus read-side diagnostics over
// item_statistics.
type StatisticsService struct {
	db           store.Querier
	stats        store.StatisticsStore
	interactions store.InteractionStore
	priorAlpha   float64
	priorBeta    float64
	logger       logging.Logger
}

// NewStatisticsService constructs a StatisticsService.
func NewStatisticsService(db store.Querier, stats store.StatisticsStore, interactions store.InteractionStore, priorAlpha, priorBeta float64, logger logging.Logger) *StatisticsService {
	return &StatisticsService{db: db, stats: stats, interactions: interactions, priorAlpha: priorAlpha, priorBeta: priorBeta, logger: logger}
}

// GetGlobalStats returns the catalog-wide engagement aggregate.
func (s *StatisticsService) GetGlobalStats(ctx context.Context) (store.GlobalStats, error) {
	return s.stats.GlobalStats(ctx, s.db)
}

// GetTopItems returns the top-N outputs by the given metric, one of
// "clicks" (default), "impressions", or "ctr". Diagnostic only, with no
// ranking-pipeline role.
func (s *StatisticsService) GetTopItems(ctx context.Context, limit int, metric string) ([]models.ItemStatistics, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.stats.TopItems(ctx, s.db, limit, metric)
}

// UpdateCTREstimates recomputes ctr_estimate and ctr_variance for every
// output with at least one impression, using the Beta-Bernoulli posterior
// mean and variance under this service's configured prior. Returns the
// number of rows refreshed.
func (s *StatisticsService) UpdateCTREstimates(ctx context.Context) (int64, error) {
	n, err := s.stats.UpdateCTREstimates(ctx, s.db, s.priorAlpha, s.priorBeta)
	if err != nil {
		return 0, fmt.Errorf("update ctr estimates: %w", err)
	}
	s.logger.Info(ctx, "refreshed ctr estimates", logging.Fields{"rows_updated": n})
	return n, nil
}

// CalibratePositionPropensities derives a fresh position->propensity table
// from the last sinceDays of click events and returns it relative to
// position 1, or an empty map when position 1 has no observed clicks (the
// caller should then keep using the previous table rather than overwrite
// it with an undefined baseline).
func (s *StatisticsService) CalibratePositionPropensities(ctx context.Context, sinceDays int, smoothing float64) (map[int]float64, error) {
	counts, err := s.interactions.PositionActionCounts(ctx, s.db, sinceDays)
	if err != nil {
		return nil, fmt.Errorf("position action counts: %w", err)
	}

	impressionsByPos := map[int]float64{}
	clicksByPos := map[int]float64{}
	for _, c := range counts {
		switch c.ActionType {
		case models.ActionImpression, models.ActionClick, models.ActionSkip:
			impressionsByPos[c.Position] += float64(c.Count)
		}
		if c.ActionType == models.ActionClick {
			clicksByPos[c.Position] += float64(c.Count)
		}
	}

	propensities := core.CalibratePropensitiesFromAggregates(impressionsByPos, clicksByPos, smoothing)
	if len(propensities) == 0 {
		s.logger.Warn(ctx, "position 1 has no observed clicks in calibration window, keeping previous propensities", logging.Fields{"since_days": sinceDays})
	}
	return propensities, nil
}
