package models

import (
	"database/sql"

	"github.com/google/uuid"
)

// ItemStatistics holds the hot engagement counters for one AudioOutput.
// Rows are created lazily on first interaction and mutated only by
// FeedbackService (counters) and StatisticsService (CTR estimates).
type ItemStatistics struct {
	OutputID        uuid.UUID    `db:"output_id" json:"output_id"`
	ImpressionCount int64        `db:"impression_count" json:"impression_count"`
	ClickCount      int64        `db:"click_count" json:"click_count"`
	LikeCount       int64        `db:"like_count" json:"like_count"`
	PositionSum     int64        `db:"position_sum" json:"position_sum"`
	CTREstimate     float64      `db:"ctr_estimate" json:"ctr_estimate"`
	CTRVariance     float64      `db:"ctr_variance" json:"ctr_variance"`
	LastInteraction sql.NullTime `db:"last_interaction" json:"last_interaction,omitempty"`
	StatsUpdatedAt  sql.NullTime `db:"stats_updated_at" json:"stats_updated_at,omitempty"`
}

// AveragePosition returns position_sum/impression_count, or 0 when no
// impressions have been recorded.
func (s *ItemStatistics) AveragePosition() float64 {
	if s.ImpressionCount == 0 {
		return 0
	}
	return float64(s.PositionSum) / float64(s.ImpressionCount)
}

// ItemStatisticsDefaults are the values an AudioOutput with no recorded
// interactions is treated as having, per the retrieval left-join contract.
var ItemStatisticsDefaults = ItemStatistics{
	CTREstimate: 0.5,
	CTRVariance: 0.25,
}

// ActionType enumerates the kinds of interaction this system records.
type ActionType string

const (
	ActionImpression   ActionType = "impression"
	ActionClick        ActionType = "click"
	ActionLike         ActionType = "like"
	ActionSkip         ActionType = "skip"
	ActionPlayComplete ActionType = "play_complete"
)

// Valid reports whether a is one of the recognized action kinds.
func (a ActionType) Valid() bool {
	switch a {
	case ActionImpression, ActionClick, ActionLike, ActionSkip, ActionPlayComplete:
		return true
	}
	return false
}

// StatisticsDelta is the per-action counter delta applied by the UPSERT in
// FeedbackService.Record.
type StatisticsDelta struct {
	Impression int64
	Click      int64
	Like       int64
}

// DeltaFor returns the counter delta for the given action kind.
func DeltaFor(action ActionType) StatisticsDelta {
	switch action {
	case ActionImpression:
		return StatisticsDelta{Impression: 1}
	case ActionClick:
		return StatisticsDelta{Impression: 1, Click: 1}
	case ActionSkip:
		return StatisticsDelta{Impression: 1}
	case ActionLike:
		return StatisticsDelta{Like: 1}
	case ActionPlayComplete:
		// Logged for the event record only; moves no counter.
		return StatisticsDelta{}
	default:
		return StatisticsDelta{}
	}
}
