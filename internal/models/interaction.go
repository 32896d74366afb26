package models

import (
	"time"

	"github.com/google/uuid"
)

// Interaction is an append-only event record. It is never updated or
// deleted by this service.
type Interaction struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	OutputID      uuid.UUID  `db:"output_id" json:"output_id"`
	ActionType    ActionType `db:"action_type" json:"action_type"`
	PositionShown int        `db:"position_shown" json:"position_shown"`
	SessionID     *string    `db:"session_id" json:"session_id,omitempty"`
	Context       JSONMap    `db:"context" json:"context,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
