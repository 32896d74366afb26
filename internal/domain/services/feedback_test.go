package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type fakeInteractionStore struct {
	mu     sync.Mutex
	events []*models.Interaction
}

func (f *fakeInteractionStore) Insert(_ context.Context, _ store.Querier, interaction *models.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, interaction)
	return nil
}

func (f *fakeInteractionStore) PositionActionCounts(context.Context, store.Querier, int) ([]store.PositionActionCount, error) {
	return nil, nil
}

type fakeStatisticsStore struct {
	mu    sync.Mutex
	stats map[uuid.UUID]*models.ItemStatistics
}

func newFakeStatisticsStore() *fakeStatisticsStore {
	return &fakeStatisticsStore{stats: map[uuid.UUID]*models.ItemStatistics{}}
}

func (f *fakeStatisticsStore) BeginTxx(context.Context, *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, nil
}

func (f *fakeStatisticsStore) UpsertDelta(_ context.Context, _ store.Querier, outputID uuid.UUID, delta models.StatisticsDelta, positionShown int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stats[outputID]
	if !ok {
		s = &models.ItemStatistics{OutputID: outputID}
		f.stats[outputID] = s
	}
	s.ImpressionCount += delta.Impression
	s.ClickCount += delta.Click
	s.LikeCount += delta.Like
	if delta.Impression > 0 {
		s.PositionSum += int64(positionShown)
	}
	return nil
}

func (f *fakeStatisticsStore) GetByOutputID(_ context.Context, _ store.Querier, outputID uuid.UUID) (*models.ItemStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stats[outputID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStatisticsStore) UpdateCTREstimates(context.Context, store.Querier, float64, float64) (int64, error) {
	return 0, nil
}

func (f *fakeStatisticsStore) GlobalStats(context.Context, store.Querier) (store.GlobalStats, error) {
	return store.GlobalStats{}, nil
}

func (f *fakeStatisticsStore) TopItems(context.Context, store.Querier, int, string) ([]models.ItemStatistics, error) {
	return nil, nil
}

// newTestFeedbackService wires a FeedbackService against fake interaction and
// statistics stores, backed by a sqlmock'd *sqlx.DB so BeginTxx/Commit work
// against a real (mocked) transaction without a live database.
func newTestFeedbackService(t *testing.T) (*FeedbackService, sqlmock.Sqlmock, *fakeStatisticsStore) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { rawDB.Close() })
	db := sqlx.NewDb(rawDB, "postgres")

	interactions := &fakeInteractionStore{}
	stats := newFakeStatisticsStore()
	svc := NewFeedbackService(db, interactions, stats, logging.NewStdLogger())
	return svc, mock, stats
}

func TestRecordInteractionAppliesDeltaAtomically(t *testing.T) {
	svc, mock, stats := newTestFeedbackService(t)
	outputID := mustUUID("output-1")

	mock.ExpectBegin()
	mock.ExpectCommit()

	interactionID, err := svc.Record(context.Background(), RecordInteraction{
		OutputID:      outputID,
		ActionType:    models.ActionClick,
		PositionShown: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interactionID == uuid.Nil {
		t.Fatal("expected a non-nil interaction id")
	}

	got := stats.stats[outputID]
	if got.ImpressionCount != 1 || got.ClickCount != 1 || got.PositionSum != 3 {
		t.Fatalf("unexpected statistics after click: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordInteractionRejectsInvalidActionType(t *testing.T) {
	svc, _, _ := newTestFeedbackService(t)
	_, err := svc.Record(context.Background(), RecordInteraction{
		OutputID:   mustUUID("output-1"),
		ActionType: models.ActionType("not_a_real_action"),
	})
	if err == nil {
		t.Fatal("expected error for invalid action type")
	}
}

func TestRecordInteractionPlayCompleteIsNoOpDelta(t *testing.T) {
	svc, mock, stats := newTestFeedbackService(t)
	outputID := mustUUID("output-1")

	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := svc.Record(context.Background(), RecordInteraction{
		OutputID:   outputID,
		ActionType: models.ActionPlayComplete,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := stats.stats[outputID]
	if got.ImpressionCount != 0 || got.ClickCount != 0 || got.LikeCount != 0 {
		t.Fatalf("expected play_complete to apply a zero delta, got %+v", got)
	}
}

func TestRecordInteractionConcurrentWritesPreserveCounts(t *testing.T) {
	svc, mock, stats := newTestFeedbackService(t)
	outputID := mustUUID("output-1")

	const n = 50
	// Begin/Commit pairs from 50 goroutines interleave arbitrarily.
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Record(context.Background(), RecordInteraction{
				OutputID:      outputID,
				ActionType:    models.ActionImpression,
				PositionShown: 1,
			})
		}()
	}
	wg.Wait()

	got := stats.stats[outputID]
	if got.ImpressionCount != int64(n) {
		t.Fatalf("expected %d impressions after concurrent writes, got %d", n, got.ImpressionCount)
	}
}

func TestGetOutputStatsReturnsNotFoundWhenAbsent(t *testing.T) {
	svc, _, _ := newTestFeedbackService(t)
	stats, err := svc.GetOutputStats(context.Background(), mustUUID("never-seen"))
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if stats != nil {
		t.Fatalf("expected nil stats, got %+v", stats)
	}
}
