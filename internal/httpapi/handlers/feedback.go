package handlers

import (
	"net/http"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/domain/services"
	"github.com/fntelecomllc/rankingengine/internal/httpapi/dto"
	"github.com/fntelecomllc/rankingengine/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FeedbackHandler serves the feedback endpoints.
type FeedbackHandler struct {
	feedback *services.FeedbackService
	validate *validator.Validate
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, validate: validator.New()}
}

// Record serves POST /api/v1/feedback/:output_id.
func (h *FeedbackHandler) Record(c *gin.Context) {
	outputID, err := uuid.Parse(c.Param("output_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "output_id must be a valid uuid"})
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position := 0
	if req.PositionShown != nil {
		position = *req.PositionShown
	}
	var sessionID *string
	if req.SessionID != "" {
		sessionID = &req.SessionID
	}

	in := services.RecordInteraction{
		OutputID:      outputID,
		ActionType:    models.ActionType(req.Action),
		PositionShown: position,
		SessionID:     sessionID,
		Context:       models.JSONMap(req.Context),
	}
	interactionID, err := h.feedback.Record(c.Request.Context(), in)
	if err != nil {
		WriteError(c, err)
		return
	}

	stats, err := h.feedback.GetOutputStats(c.Request.Context(), outputID)
	resp := dto.FeedbackResponse{
		Success:       true,
		InteractionID: interactionID.String(),
		OutputID:      outputID.String(),
		Action:        req.Action,
		RecordedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err == nil {
		clicks := stats.ClickCount
		impressions := stats.ImpressionCount
		resp.CurrentClicks = &clicks
		resp.CurrentImpressions = &impressions
	}
	c.JSON(http.StatusOK, resp)
}

// Stats serves GET /api/v1/feedback/:output_id/stats.
func (h *FeedbackHandler) Stats(c *gin.Context) {
	outputID, err := uuid.Parse(c.Param("output_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "output_id must be a valid uuid"})
		return
	}

	stats, err := h.feedback.GetOutputStats(c.Request.Context(), outputID)
	if err != nil {
		WriteError(c, err)
		return
	}

	avgPosition := stats.AveragePosition()
	resp := dto.StatsResponse{
		OutputID:        outputID.String(),
		ClickCount:      stats.ClickCount,
		ImpressionCount: stats.ImpressionCount,
		LikeCount:       stats.LikeCount,
		CTREstimate:     stats.CTREstimate,
		AveragePosition: &avgPosition,
	}
	if stats.LastInteraction.Valid {
		formatted := stats.LastInteraction.Time.UTC().Format(time.RFC3339)
		resp.LastInteraction = &formatted
	}
	c.JSON(http.StatusOK, resp)
}
