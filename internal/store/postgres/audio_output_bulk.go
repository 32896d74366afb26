package postgres

import (
	"context"
	"fmt"

	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/jackc/pgx/v5"
)

// pgxBatcher is satisfied by both *pgx.Conn and *pgxpool.Pool, letting
// callers choose a single connection or a pool without this package caring.
type pgxBatcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const upsertAudioOutputSQL = `
	INSERT INTO audio_outputs (id, song_id, output_ordinal, audio_url, sounds_description, created_at)
	VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (song_id, output_ordinal) DO UPDATE SET
		audio_url = EXCLUDED.audio_url,
		sounds_description = EXCLUDED.sounds_description`

// BulkUpsertAudioOutputsPgx writes a song's outputs in a single round trip
// via a pgx batch. It upserts on (song_id, output_ordinal), so writing the
// same song's outputs again overwrites them in place instead of failing on
// the unique constraint.
func BulkUpsertAudioOutputsPgx(ctx context.Context, conn pgxBatcher, outputs []*models.AudioOutput) error {
	if len(outputs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, out := range outputs {
		batch.Queue(upsertAudioOutputSQL, out.ID, out.SongID, out.OutputOrdinal, out.AudioURL, out.SoundsDescription)
	}

	results := conn.SendBatch(ctx, batch)
	defer results.Close()
	for range outputs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("bulk upsert audio outputs: %w", err)
		}
	}
	return nil
}
