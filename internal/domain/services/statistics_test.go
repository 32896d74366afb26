package services

import (
	"context"
	"testing"

	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePositionCountsInteractionStore struct {
	fakeInteractionStore
	counts []store.PositionActionCount
}

func (f *fakePositionCountsInteractionStore) PositionActionCounts(context.Context, store.Querier, int) ([]store.PositionActionCount, error) {
	return f.counts, nil
}

func TestCalibratePositionPropensitiesNormalizesToPositionOne(t *testing.T) {
	interactions := &fakePositionCountsInteractionStore{counts: []store.PositionActionCount{
		{Position: 1, ActionType: models.ActionImpression, Count: 100},
		{Position: 1, ActionType: models.ActionClick, Count: 40},
		{Position: 2, ActionType: models.ActionImpression, Count: 100},
		{Position: 2, ActionType: models.ActionClick, Count: 20},
	}}
	svc := NewStatisticsService(nil, newFakeStatisticsStore(), interactions, 1, 1, logging.NewStdLogger())

	propensities, err := svc.CalibratePositionPropensities(context.Background(), 30, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, propensities[1])
	assert.Less(t, propensities[2], 1.0)
}

func TestCalibratePositionPropensitiesEmptyWhenNoPositionOneClicks(t *testing.T) {
	interactions := &fakePositionCountsInteractionStore{counts: []store.PositionActionCount{
		{Position: 1, ActionType: models.ActionImpression, Count: 50},
		{Position: 2, ActionType: models.ActionClick, Count: 5},
		{Position: 2, ActionType: models.ActionImpression, Count: 50},
	}}
	svc := NewStatisticsService(nil, newFakeStatisticsStore(), interactions, 1, 1, logging.NewStdLogger())

	// Zero smoothing so position 1's observed ctr is exactly 0, which is the
	// condition that must leave the previous table in place.
	propensities, err := svc.CalibratePositionPropensities(context.Background(), 30, 0)
	require.NoError(t, err)
	assert.Empty(t, propensities, "expected empty map signaling caller should keep previous table")
}

func TestGetTopItemsDefaultsLimit(t *testing.T) {
	stats := newFakeStatisticsStore()
	svc := NewStatisticsService(nil, stats, &fakeInteractionStore{}, 1, 1, logging.NewStdLogger())
	_, err := svc.GetTopItems(context.Background(), 0, "clicks")
	require.NoError(t, err)
}
