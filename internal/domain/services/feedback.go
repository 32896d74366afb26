package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/google/uuid"
)

// TransactingQuerier is satisfied by *sqlx.DB: a Querier that can also open
// transactions, which FeedbackService needs for atomic writes and plain
// reads alike.
type TransactingQuerier interface {
	store.Querier
	store.Transactor
}

// FeedbackService implements C9: recording interaction events and keeping
// item_statistics counters consistent with the event log, atomically.
type FeedbackService struct {
	db           TransactingQuerier
	interactions store.InteractionStore
	stats        store.StatisticsStore
	logger       logging.Logger
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(db TransactingQuerier, interactions store.InteractionStore, stats store.StatisticsStore, logger logging.Logger) *FeedbackService {
	return &FeedbackService{db: db, interactions: interactions, stats: stats, logger: logger}
}

// RecordInteraction struct carries one client-reported event.
type RecordInteraction struct {
	OutputID      uuid.UUID
	ActionType    models.ActionType
	PositionShown int
	SessionID     *string
	Context       models.JSONMap
}

// Record appends the interaction to the event log and applies its counter
// delta to item_statistics in a single transaction, so the two never drift
// apart even under concurrent writers for the same output. Returns the
// generated interaction id.
func (f *FeedbackService) Record(ctx context.Context, in RecordInteraction) (uuid.UUID, error) {
	if !in.ActionType.Valid() {
		return uuid.Nil, fmt.Errorf("%w: unrecognized action type %q", ErrInvalidInput, in.ActionType)
	}
	if in.PositionShown < 0 {
		return uuid.Nil, fmt.Errorf("%w: position_shown must be >= 0", ErrInvalidInput)
	}

	tx, err := f.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	interaction := &models.Interaction{
		ID:            uuid.New(),
		OutputID:      in.OutputID,
		ActionType:    in.ActionType,
		PositionShown: in.PositionShown,
		SessionID:     in.SessionID,
		Context:       in.Context,
		CreatedAt:     time.Now(),
	}
	if err := f.interactions.Insert(ctx, tx, interaction); err != nil {
		return uuid.Nil, fmt.Errorf("insert interaction: %w", err)
	}

	delta := models.DeltaFor(in.ActionType)
	if err := f.stats.UpsertDelta(ctx, tx, in.OutputID, delta, in.PositionShown); err != nil {
		return uuid.Nil, fmt.Errorf("upsert statistics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit transaction: %w", err)
	}

	f.logger.Info(ctx, "recorded interaction", logging.Fields{
		"output_id":   in.OutputID.String(),
		"action_type": string(in.ActionType),
	})
	return interaction.ID, nil
}

// RecordBatch applies a batch of impressions (e.g. one per item shown in a
// search response) as independent transactions. It returns the first error
// encountered but continues recording the remaining items, since partial
// impression loss is preferable to discarding a whole batch over one bad row.
func (f *FeedbackService) RecordBatch(ctx context.Context, ins []RecordInteraction) error {
	var firstErr error
	for _, in := range ins {
		if _, err := f.Record(ctx, in); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetOutputStats returns the current counters for one output. It reports
// ErrNotFound when the output has never had an interaction recorded; the
// /stats HTTP endpoint surfaces this as 404, distinct from the retrieval
// path's left-join defaults (models.ItemStatisticsDefaults), which paper
// over the same absence for scoring purposes instead of erroring.
func (f *FeedbackService) GetOutputStats(ctx context.Context, outputID uuid.UUID) (*models.ItemStatistics, error) {
	stats, err := f.stats.GetByOutputID(ctx, f.db, outputID)
	if err == store.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	return stats, nil
}
