package models

import (
	"time"

	"github.com/google/uuid"
)

// AudioOutput is a renderable artifact of a Song. A Song owns an ordered
// sequence of AudioOutputs, typically two.
type AudioOutput struct {
	ID                uuid.UUID `db:"id" json:"id"`
	SongID            uuid.UUID `db:"song_id" json:"song_id"`
	OutputOrdinal     int       `db:"output_ordinal" json:"output_ordinal"`
	AudioURL          string    `db:"audio_url" json:"audio_url"`
	SoundsDescription *string   `db:"sounds_description" json:"sounds_description,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
