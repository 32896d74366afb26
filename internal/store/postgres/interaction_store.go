package postgres

import (
	"context"
	"fmt"

	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/jmoiron/sqlx"
)

// interactionStorePostgres implements store.InteractionStore as the
// append-only interactions event log.
type interactionStorePostgres struct {
	db *sqlx.DB
}

// NewInteractionStorePostgres creates an InteractionStore for PostgreSQL.
func NewInteractionStorePostgres(db *sqlx.DB) store.InteractionStore {
	return &interactionStorePostgres{db: db}
}

func (s *interactionStorePostgres) Insert(ctx context.Context, exec store.Querier, interaction *models.Interaction) error {
	query := `
		INSERT INTO interactions (id, output_id, action_type, position_shown, session_id, context, created_at)
		VALUES (:id, :output_id, :action_type, :position_shown, :session_id, :context, :created_at)`
	_, err := exec.NamedExecContext(ctx, query, interaction)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (s *interactionStorePostgres) PositionActionCounts(ctx context.Context, exec store.Querier, sinceDays int) ([]store.PositionActionCount, error) {
	query := `
		SELECT position_shown AS position, action_type, COUNT(*) AS count
		FROM interactions
		WHERE created_at >= now() - ($1 || ' days')::interval
			AND action_type IN ('click', 'impression', 'skip')
			AND position_shown BETWEEN 1 AND 20
		GROUP BY position_shown, action_type`
	rows := []store.PositionActionCount{}
	if err := exec.SelectContext(ctx, &rows, query, sinceDays); err != nil {
		return nil, fmt.Errorf("position action counts: %w", err)
	}
	return rows, nil
}

var _ store.InteractionStore = (*interactionStorePostgres)(nil)
