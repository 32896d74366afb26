package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// statisticsStorePostgres implements store.StatisticsStore against the
// item_statistics table, relying on INSERT ... ON CONFLICT DO UPDATE to
// serialize concurrent writers per output_id.
type statisticsStorePostgres struct {
	db *sqlx.DB
}

// NewStatisticsStorePostgres creates a StatisticsStore for PostgreSQL.
func NewStatisticsStorePostgres(db *sqlx.DB) store.StatisticsStore {
	return &statisticsStorePostgres{db: db}
}

func (s *statisticsStorePostgres) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return s.db.BeginTxx(ctx, opts)
}

func (s *statisticsStorePostgres) UpsertDelta(ctx context.Context, exec store.Querier, outputID uuid.UUID, delta models.StatisticsDelta, positionShown int) error {
	query := `
		INSERT INTO item_statistics (output_id, impression_count, click_count, like_count, position_sum, ctr_estimate, ctr_variance, last_interaction, stats_updated_at)
		VALUES ($1, $2, $3, $4, $5, 0.5, 0.25, now(), now())
		ON CONFLICT (output_id) DO UPDATE SET
			impression_count = item_statistics.impression_count + EXCLUDED.impression_count,
			click_count = item_statistics.click_count + EXCLUDED.click_count,
			like_count = item_statistics.like_count + EXCLUDED.like_count,
			position_sum = item_statistics.position_sum + EXCLUDED.position_sum,
			last_interaction = now(),
			stats_updated_at = now()`
	_, err := exec.ExecContext(ctx, query, outputID, delta.Impression, delta.Click, delta.Like, int64(positionShown))
	if err != nil {
		return fmt.Errorf("upsert item_statistics delta: %w", err)
	}
	return nil
}

func (s *statisticsStorePostgres) GetByOutputID(ctx context.Context, exec store.Querier, outputID uuid.UUID) (*models.ItemStatistics, error) {
	stats := &models.ItemStatistics{}
	query := `
		SELECT output_id, impression_count, click_count, like_count, position_sum, ctr_estimate, ctr_variance, last_interaction, stats_updated_at
		FROM item_statistics WHERE output_id = $1`
	err := exec.GetContext(ctx, stats, query, outputID)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item_statistics: %w", err)
	}
	return stats, nil
}

func (s *statisticsStorePostgres) UpdateCTREstimates(ctx context.Context, exec store.Querier, alpha, beta float64) (int64, error) {
	query := `
		UPDATE item_statistics SET
			ctr_estimate = ($1::float8 + click_count) / ($1::float8 + $2::float8 + impression_count),
			ctr_variance = (($1::float8 + click_count) * ($2::float8 + impression_count - click_count)) /
				(power($1::float8 + $2::float8 + impression_count, 2) * ($1::float8 + $2::float8 + impression_count + 1)),
			stats_updated_at = now()
		WHERE impression_count > 0`
	result, err := exec.ExecContext(ctx, query, alpha, beta)
	if err != nil {
		return 0, fmt.Errorf("update ctr estimates: %w", err)
	}
	return result.RowsAffected()
}

func (s *statisticsStorePostgres) GlobalStats(ctx context.Context, exec store.Querier) (store.GlobalStats, error) {
	var g store.GlobalStats
	query := `
		SELECT
			COUNT(*) AS total_items,
			COALESCE(SUM(impression_count), 0) AS total_impressions,
			COALESCE(SUM(click_count), 0) AS total_clicks,
			COALESCE(MAX(click_count), 0) AS max_clicks,
			COALESCE(AVG(click_count), 0) AS avg_clicks
		FROM item_statistics`
	row := struct {
		TotalItems       int64   `db:"total_items"`
		TotalImpressions int64   `db:"total_impressions"`
		TotalClicks      int64   `db:"total_clicks"`
		MaxClicks        int64   `db:"max_clicks"`
		AvgClicks        float64 `db:"avg_clicks"`
	}{}
	if err := exec.GetContext(ctx, &row, query); err != nil {
		return g, fmt.Errorf("global stats: %w", err)
	}
	g.TotalItems = row.TotalItems
	g.TotalImpressions = row.TotalImpressions
	g.TotalClicks = row.TotalClicks
	g.MaxClicks = row.MaxClicks
	g.AvgClicks = row.AvgClicks
	if g.TotalImpressions > 0 {
		g.GlobalCTR = float64(g.TotalClicks) / float64(g.TotalImpressions)
	}
	return g, nil
}

func (s *statisticsStorePostgres) TopItems(ctx context.Context, exec store.Querier, limit int, metric string) ([]models.ItemStatistics, error) {
	orderCol := "click_count"
	switch metric {
	case "impressions":
		orderCol = "impression_count"
	case "ctr":
		orderCol = "ctr_estimate"
	}
	query := fmt.Sprintf(`
		SELECT output_id, impression_count, click_count, like_count, position_sum, ctr_estimate, ctr_variance, last_interaction, stats_updated_at
		FROM item_statistics
		ORDER BY %s DESC
		LIMIT $1`, orderCol)
	items := []models.ItemStatistics{}
	if err := exec.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	return items, nil
}

var _ store.StatisticsStore = (*statisticsStorePostgres)(nil)
