package dto

// SearchFilters is the optional structured filter conjunction on a search
// request.
type SearchFilters struct {
	Genre  string `json:"genre,omitempty"`
	Mood   string `json:"mood,omitempty"`
	Format string `json:"format,omitempty"`
	BPMMin *int   `json:"bpm_min,omitempty" validate:"omitempty,min=20,max=300"`
	BPMMax *int   `json:"bpm_max,omitempty" validate:"omitempty,min=20,max=300"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query         string         `json:"query" validate:"required,min=1,max=500"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	Limit         int            `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	IncludeScores bool           `json:"include_scores,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	// RecordImpressions defaults to true: the server logs one impression
	// per returned result. Callers that replay or prefetch searches set it
	// to false to avoid polluting the engagement counters.
	RecordImpressions *bool `json:"record_impressions,omitempty"`
}

// Scores is the optional per-result score breakdown, included only when
// the request set include_scores.
type Scores struct {
	Semantic    float64  `json:"semantic"`
	Popularity  float64  `json:"popularity"`
	Exploration float64  `json:"exploration"`
	Freshness   float64  `json:"freshness"`
	Composite   float64  `json:"composite"`
	Neural      *float64 `json:"neural,omitempty"`
	Final       *float64 `json:"final,omitempty"`
	MMR         *float64 `json:"mmr,omitempty"`
	Redundancy  *float64 `json:"redundancy,omitempty"`
}

// SearchResult is one ranked item in a search response.
type SearchResult struct {
	OutputID                  string  `json:"output_id"`
	SongID                    string  `json:"song_id"`
	Title                     string  `json:"title"`
	AudioURL                  string  `json:"audio_url"`
	PrimaryGenre              string  `json:"primary_genre,omitempty"`
	PrimaryMood               string  `json:"primary_mood,omitempty"`
	BPM                       int     `json:"bpm,omitempty"`
	MusicalKey                string  `json:"musical_key,omitempty"`
	SoundsDescription         string  `json:"sounds_description,omitempty"`
	AcousticPromptDescriptive string  `json:"acoustic_prompt_descriptive,omitempty"`
	ClickCount                *int64  `json:"click_count,omitempty"`
	Scores                    *Scores `json:"scores,omitempty"`
	Position                  int     `json:"position"`
}

// SearchResponse is the body of a successful POST /api/v1/search response.
type SearchResponse struct {
	Query           string         `json:"query"`
	Results         []SearchResult `json:"results"`
	TotalCandidates int            `json:"total_candidates"`
	RetrievalMs     int64          `json:"retrieval_ms"`
	RankingMs       int64          `json:"ranking_ms"`
	RerankMs        int64          `json:"rerank_ms"`
	DiversityMs     int64          `json:"diversity_ms"`
	TotalMs         int64          `json:"total_ms"`
	FiltersApplied  *SearchFilters `json:"filters_applied,omitempty"`
}
