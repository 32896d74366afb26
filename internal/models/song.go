package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Song is a catalog entity. It is immutable after ingestion except for
// ExtendedMetadata.
type Song struct {
	ID                        uuid.UUID       `db:"id" json:"id"`
	Title                     string          `db:"title" json:"title"`
	Prompt                    *string         `db:"prompt" json:"prompt,omitempty"`
	Lyrics                    *string         `db:"lyrics" json:"lyrics,omitempty"`
	AcousticPromptDescriptive *string         `db:"acoustic_prompt_descriptive" json:"acoustic_prompt_descriptive,omitempty"`
	Embedding                 pgvector.Vector `db:"embedding" json:"-"`
	BPM                       *int            `db:"bpm" json:"bpm,omitempty"`
	MusicalKey                *string         `db:"musical_key" json:"musical_key,omitempty"`
	PrimaryGenre              *string         `db:"primary_genre" json:"primary_genre,omitempty"`
	PrimaryMood               *string         `db:"primary_mood" json:"primary_mood,omitempty"`
	Format                    *string         `db:"format" json:"format,omitempty"`
	PrimaryContext            *string         `db:"primary_context" json:"primary_context,omitempty"`
	VocalGender               *string         `db:"vocal_gender" json:"vocal_gender,omitempty"`
	Tags                      pq.StringArray  `db:"tags" json:"tags,omitempty"`
	ExtendedMetadata          JSONMap         `db:"extended_metadata" json:"extended_metadata,omitempty"`
	CreatedAt                 time.Time       `db:"created_at" json:"created_at"`
}

// JSONMap is a JSONB-backed arbitrary metadata map, the one field of Song
// that may be mutated after ingestion.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (any, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return nil
	}
	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(b, m)
}
