package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/domain/services"
	"github.com/fntelecomllc/rankingengine/internal/httpapi/dto"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// SearchHandler serves POST /api/v1/search.
type SearchHandler struct {
	pipeline          *services.PipelineService
	feedback          *services.FeedbackService
	retrievalPoolSize int
	resultSize        int
	validate          *validator.Validate
	logger            logging.Logger
}

// NewSearchHandler constructs a SearchHandler. feedback may be nil to
// disable server-side impression recording entirely.
func NewSearchHandler(pipeline *services.PipelineService, feedback *services.FeedbackService, retrievalPoolSize, resultSize int, logger logging.Logger) *SearchHandler {
	return &SearchHandler{
		pipeline:          pipeline,
		feedback:          feedback,
		retrievalPoolSize: retrievalPoolSize,
		resultSize:        resultSize,
		validate:          validator.New(),
		logger:            logger,
	}
}

// Handle implements gin.HandlerFunc for POST /api/v1/search.
func (h *SearchHandler) Handle(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = h.resultSize
	}

	filter := services.SearchFilter{}
	var filtersApplied *dto.SearchFilters
	if req.Filters != nil {
		filter = services.SearchFilter{
			Genre:  req.Filters.Genre,
			Mood:   req.Filters.Mood,
			Format: req.Filters.Format,
			BPMMin: req.Filters.BPMMin,
			BPMMax: req.Filters.BPMMax,
		}
		filtersApplied = req.Filters
	}

	result, err := h.pipeline.Search(c.Request.Context(), req.Query, filter, h.retrievalPoolSize, limit)
	if err != nil {
		h.logger.Error(c.Request.Context(), "search pipeline failed", err, logging.Fields{"query": req.Query})
		WriteError(c, err)
		return
	}

	results := make([]dto.SearchResult, len(result.Results))
	for i, cand := range result.Results {
		results[i] = toSearchResult(cand, i+1, req.IncludeScores)
	}

	if h.feedback != nil && (req.RecordImpressions == nil || *req.RecordImpressions) {
		h.recordImpressions(result.Results, req.SessionID)
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		Query:           req.Query,
		Results:         results,
		TotalCandidates: result.TotalCandidates,
		RetrievalMs:     result.RetrievalMs,
		RankingMs:       result.RankingMs,
		RerankMs:        result.RerankMs,
		DiversityMs:     result.DiversityMs,
		TotalMs:         result.TotalMs,
		FiltersApplied:  filtersApplied,
	})
}

// recordImpressions logs one impression per returned result at its display
// position, off the request goroutine so feedback latency never shows up in
// search latency.
func (h *SearchHandler) recordImpressions(candidates []services.Candidate, sessionID string) {
	ins := make([]services.RecordInteraction, len(candidates))
	for i, cand := range candidates {
		in := services.RecordInteraction{
			OutputID:      cand.OutputID,
			ActionType:    models.ActionImpression,
			PositionShown: i + 1,
		}
		if sessionID != "" {
			sid := sessionID
			in.SessionID = &sid
		}
		ins[i] = in
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.feedback.RecordBatch(ctx, ins); err != nil {
			h.logger.Warn(ctx, "failed to record search impressions", logging.Fields{"error": err.Error()})
		}
	}()
}

func toSearchResult(c services.Candidate, position int, includeScores bool) dto.SearchResult {
	result := dto.SearchResult{
		OutputID:                  c.OutputID.String(),
		SongID:                    c.SongID.String(),
		Title:                     c.Title,
		AudioURL:                  c.AudioURL,
		PrimaryGenre:              c.PrimaryGenre,
		PrimaryMood:               c.PrimaryMood,
		BPM:                       c.BPM,
		MusicalKey:                c.MusicalKey,
		SoundsDescription:         c.SoundsDescription,
		AcousticPromptDescriptive: c.AcousticPrompt,
		Position:                  position,
	}
	if c.ImpressionCount > 0 {
		clicks := c.ClickCount
		result.ClickCount = &clicks
	}
	if includeScores {
		scores := &dto.Scores{
			Semantic:    c.SemanticScore,
			Popularity:  c.PopularityScore,
			Exploration: c.ExplorationScore,
			Freshness:   c.FreshnessScore,
			Composite:   c.CompositeScore,
		}
		if c.NeuralScore != nil {
			scores.Neural = c.NeuralScore
			final := c.FinalScore
			scores.Final = &final
		}
		if c.MMRScore != 0 {
			mmr := c.MMRScore
			redundancy := c.RedundancyScore
			scores.MMR = &mmr
			scores.Redundancy = &redundancy
		}
		result.Scores = scores
	}
	return result
}
