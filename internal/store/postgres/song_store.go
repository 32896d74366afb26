package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// songStorePostgres implements store.SongStore, the catalog write path used
// by the ingest CLI (catalog admin is otherwise out of scope for this
// service).
type songStorePostgres struct {
	db *sqlx.DB
}

// NewSongStorePostgres creates a SongStore for PostgreSQL.
func NewSongStorePostgres(db *sqlx.DB) store.SongStore {
	return &songStorePostgres{db: db}
}

func (s *songStorePostgres) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return s.db.BeginTxx(ctx, opts)
}

func (s *songStorePostgres) CreateSong(ctx context.Context, exec store.Querier, song *models.Song) error {
	query := `
		INSERT INTO songs (id, title, prompt, lyrics, acoustic_prompt_descriptive, embedding, bpm, musical_key,
			primary_genre, primary_mood, format, primary_context, vocal_gender, tags, extended_metadata, created_at)
		VALUES (:id, :title, :prompt, :lyrics, :acoustic_prompt_descriptive, :embedding, :bpm, :musical_key,
			:primary_genre, :primary_mood, :format, :primary_context, :vocal_gender, :tags, :extended_metadata, :created_at)`
	_, err := exec.NamedExecContext(ctx, query, song)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return store.ErrDuplicateEntry
		}
		return fmt.Errorf("create song: %w", err)
	}
	return nil
}

var _ store.SongStore = (*songStorePostgres)(nil)
