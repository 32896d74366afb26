package dto

// FeedbackRequest is the body of POST /api/v1/feedback/:output_id.
type FeedbackRequest struct {
	// Impressions are recorded server-side by the search handler, so the
	// public feedback surface accepts only the caller-originated actions.
	Action        string                 `json:"action" validate:"required,oneof=click like skip play_complete"`
	PositionShown *int                   `json:"position_shown,omitempty" validate:"omitempty,min=0,max=100"`
	SessionID     string                 `json:"session_id,omitempty"`
	Context       map[string]interface{} `json:"context,omitempty"`
}

// FeedbackResponse is the body of a successful feedback response.
type FeedbackResponse struct {
	Success            bool   `json:"success"`
	InteractionID      string `json:"interaction_id"`
	OutputID           string `json:"output_id"`
	Action             string `json:"action"`
	RecordedAt         string `json:"recorded_at"`
	CurrentClicks      *int64 `json:"current_clicks,omitempty"`
	CurrentImpressions *int64 `json:"current_impressions,omitempty"`
}

// StatsResponse is the body of GET /api/v1/feedback/:output_id/stats.
type StatsResponse struct {
	OutputID        string   `json:"output_id"`
	ClickCount      int64    `json:"click_count"`
	ImpressionCount int64    `json:"impression_count"`
	LikeCount       int64    `json:"like_count"`
	CTREstimate     float64  `json:"ctr_estimate"`
	AveragePosition *float64 `json:"average_position,omitempty"`
	LastInteraction *string  `json:"last_interaction,omitempty"`
}
