package store

import (
	"context"
	"database/sql"

	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Querier defines the methods that can be executed by both sqlx.DB and
// sqlx.Tx, so store methods can participate in a caller-managed transaction
// or run standalone.
type Querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	Rebind(query string) string
}

// Transactor starts a transaction for stores that need multi-statement
// atomicity (FeedbackService.Record).
type Transactor interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// RetrievalFilter is the structured filter conjunction accepted by
// RetrievalStore.Search.
type RetrievalFilter struct {
	Genre  string
	Mood   string
	Format string
	BPMMin *int
	BPMMax *int
}

// CandidateRow is the homogeneous row shape returned by ANN retrieval: one
// AudioOutput, its parent Song's facets, and its ItemStatistics (defaulted
// when absent).
type CandidateRow struct {
	OutputID          uuid.UUID       `db:"output_id"`
	SongID            uuid.UUID       `db:"song_id"`
	Title             string          `db:"title"`
	AudioURL          string          `db:"audio_url"`
	AcousticPrompt    sql.NullString  `db:"acoustic_prompt"`
	SoundsDescription sql.NullString  `db:"sounds_description"`
	PrimaryGenre      sql.NullString  `db:"primary_genre"`
	PrimaryMood       sql.NullString  `db:"primary_mood"`
	MusicalKey        sql.NullString  `db:"musical_key"`
	Format            sql.NullString  `db:"format"`
	BPM               sql.NullInt32   `db:"bpm"`
	Tags              pq.StringArray  `db:"tags"`
	Embedding         pgvector.Vector `db:"embedding"`
	CosineDistance    float64         `db:"cosine_distance"`
	CreatedAt         sql.NullTime    `db:"created_at"`

	ImpressionCount int64   `db:"impression_count"`
	ClickCount      int64   `db:"click_count"`
	LikeCount       int64   `db:"like_count"`
	PositionSum     int64   `db:"position_sum"`
	CTREstimate     float64 `db:"ctr_estimate"`
	CTRVariance     float64 `db:"ctr_variance"`
}

// RetrievalStore issues the ANN candidate query (C5).
type RetrievalStore interface {
	Search(ctx context.Context, exec Querier, queryEmbedding pgvector.Vector, filter RetrievalFilter, limit int, efSearch int) ([]CandidateRow, error)
	RetrieveByIDs(ctx context.Context, exec Querier, ids []uuid.UUID) ([]CandidateRow, error)
}

// SongStore is the catalog write surface used by the ingest CLI. Audio
// outputs go through the batched pgx path instead (BulkUpsertAudioOutputsPgx).
type SongStore interface {
	Transactor
	CreateSong(ctx context.Context, exec Querier, song *models.Song) error
}

// StatisticsStore is the counter store used by FeedbackService and
// StatisticsService.
type StatisticsStore interface {
	Transactor
	UpsertDelta(ctx context.Context, exec Querier, outputID uuid.UUID, delta models.StatisticsDelta, positionShown int) error
	GetByOutputID(ctx context.Context, exec Querier, outputID uuid.UUID) (*models.ItemStatistics, error)
	UpdateCTREstimates(ctx context.Context, exec Querier, alpha, beta float64) (int64, error)
	GlobalStats(ctx context.Context, exec Querier) (GlobalStats, error)
	TopItems(ctx context.Context, exec Querier, limit int, metric string) ([]models.ItemStatistics, error)
}

// GlobalStats is the aggregate result of StatisticsStore.GlobalStats.
type GlobalStats struct {
	TotalItems       int64
	TotalImpressions int64
	TotalClicks      int64
	MaxClicks        int64
	AvgClicks        float64
	GlobalCTR        float64
}

// PositionActionCount is one row of the per-position click-distribution
// query used by CalibratePositionPropensities.
type PositionActionCount struct {
	Position   int               `db:"position"`
	ActionType models.ActionType `db:"action_type"`
	Count      int64             `db:"count"`
}

// InteractionStore is the append-only event log (C9) plus the aggregate
// query StatisticsService needs for propensity calibration (C10).
type InteractionStore interface {
	Insert(ctx context.Context, exec Querier, interaction *models.Interaction) error
	PositionActionCounts(ctx context.Context, exec Querier, sinceDays int) ([]PositionActionCount, error)
}
