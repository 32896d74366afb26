package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// retrievalStorePostgres implements store.RetrievalStore against the
// songs/audio_outputs/item_statistics schema, delegating ANN traversal to
// pgvector's HNSW index via the <=> cosine-distance operator.
type retrievalStorePostgres struct {
	db *sqlx.DB
}

// NewRetrievalStorePostgres creates a RetrievalStore for PostgreSQL.
func NewRetrievalStorePostgres(db *sqlx.DB) store.RetrievalStore {
	return &retrievalStorePostgres{db: db}
}

const candidateColumns = `
	ao.id AS output_id,
	s.id AS song_id,
	s.title AS title,
	ao.audio_url AS audio_url,
	s.acoustic_prompt_descriptive AS acoustic_prompt,
	ao.sounds_description AS sounds_description,
	s.primary_genre AS primary_genre,
	s.primary_mood AS primary_mood,
	s.musical_key AS musical_key,
	s.format AS format,
	s.bpm AS bpm,
	s.tags AS tags,
	s.embedding AS embedding,
	s.created_at AS created_at,
	COALESCE(st.impression_count, 0) AS impression_count,
	COALESCE(st.click_count, 0) AS click_count,
	COALESCE(st.like_count, 0) AS like_count,
	COALESCE(st.position_sum, 0) AS position_sum,
	COALESCE(st.ctr_estimate, 0.5) AS ctr_estimate,
	COALESCE(st.ctr_variance, 0.25) AS ctr_variance`

func (s *retrievalStorePostgres) Search(ctx context.Context, exec store.Querier, queryEmbedding pgvector.Vector, filter store.RetrievalFilter, limit int, efSearch int) ([]store.CandidateRow, error) {
	// SET LOCAL is a no-op outside a transaction block, and exec may be a
	// plain pooled connection here, so use a session-scoped SET. The value
	// is the same on every call, so it is harmless for it to stick to the
	// pooled session.
	if efSearch > 0 {
		if _, err := exec.ExecContext(ctx, fmt.Sprintf("SET hnsw.ef_search = %d", efSearch)); err != nil {
			return nil, fmt.Errorf("set hnsw.ef_search: %w", err)
		}
	}

	conditions := []string{}
	args := []interface{}{queryEmbedding}
	argN := 2

	if filter.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("s.primary_genre = $%d", argN))
		args = append(args, filter.Genre)
		argN++
	}
	if filter.Mood != "" {
		conditions = append(conditions, fmt.Sprintf("s.primary_mood = $%d", argN))
		args = append(args, filter.Mood)
		argN++
	}
	if filter.Format != "" {
		conditions = append(conditions, fmt.Sprintf("s.format = $%d", argN))
		args = append(args, filter.Format)
		argN++
	}
	if filter.BPMMin != nil {
		conditions = append(conditions, fmt.Sprintf("s.bpm >= $%d", argN))
		args = append(args, *filter.BPMMin)
		argN++
	}
	if filter.BPMMax != nil {
		conditions = append(conditions, fmt.Sprintf("s.bpm <= $%d", argN))
		args = append(args, *filter.BPMMax)
		argN++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			(s.embedding <=> $1) AS cosine_distance
		FROM audio_outputs ao
		JOIN songs s ON s.id = ao.song_id
		LEFT JOIN item_statistics st ON st.output_id = ao.id
		%s
		ORDER BY s.embedding <=> $1
		LIMIT $%d`, candidateColumns, where, argN)
	args = append(args, limit)

	rows := []store.CandidateRow{}
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ann search: %w", err)
	}
	return rows, nil
}

func (s *retrievalStorePostgres) RetrieveByIDs(ctx context.Context, exec store.Querier, ids []uuid.UUID) ([]store.CandidateRow, error) {
	query, args, err := sqlx.In(fmt.Sprintf(`
		SELECT %s, 0 AS cosine_distance
		FROM audio_outputs ao
		JOIN songs s ON s.id = ao.song_id
		LEFT JOIN item_statistics st ON st.output_id = ao.id
		WHERE ao.id IN (?)`, candidateColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build retrieve-by-ids query: %w", err)
	}
	query = exec.Rebind(query)

	rows := []store.CandidateRow{}
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("retrieve by ids: %w", err)
	}
	return rows, nil
}

var _ store.RetrievalStore = (*retrievalStorePostgres)(nil)
