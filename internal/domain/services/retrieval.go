package services

import (
	"context"
	"fmt"

	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/fntelecomllc/rankingengine/internal/store"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Candidate is the pipeline-wide record threaded through C5 -> C6 -> C7 ->
// C8, accumulating scores as it passes through each stage.
type Candidate struct {
	OutputID          uuid.UUID
	SongID            uuid.UUID
	Title             string
	AudioURL          string
	AcousticPrompt    string
	SoundsDescription string
	PrimaryGenre      string
	PrimaryMood       string
	MusicalKey        string
	Format            string
	BPM               int
	Tags              []string
	Embedding         []float32
	CreatedAtUnix     int64
	HasCreatedAt      bool

	ImpressionCount int64
	ClickCount      int64
	LikeCount       int64
	PositionSum     int64

	SemanticScore    float64
	PopularityScore  float64
	ExplorationScore float64
	FreshnessScore   float64
	CompositeScore   float64
	NeuralScore      *float64
	FinalScore       float64
	MMRScore         float64
	RedundancyScore  float64
	Rank             int
}

// SearchFilter is the structured filter conjunction accepted by RetrievalService.Search.
type SearchFilter struct {
	Genre  string
	Mood   string
	Format string
	BPMMin *int
	BPMMax *int
}

// RetrievalService implements C5: resolving a query to a candidate pool via
// ANN search over pgvector's HNSW index.
type RetrievalService struct {
	embeddings *EmbeddingProvider
	store      store.RetrievalStore
	db         store.Querier
	efSearch   int
	logger     logging.Logger
}

// NewRetrievalService constructs a RetrievalService.
func NewRetrievalService(embeddings *EmbeddingProvider, retrievalStore store.RetrievalStore, db store.Querier, efSearch int, logger logging.Logger) *RetrievalService {
	return &RetrievalService{embeddings: embeddings, store: retrievalStore, db: db, efSearch: efSearch, logger: logger}
}

// Search resolves query to an embedding, then retrieves the candidate pool.
func (s *RetrievalService) Search(ctx context.Context, query string, filter SearchFilter, limit int) ([]Candidate, error) {
	queryVec, err := s.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Search(ctx, s.db, pgvector.NewVector(queryVec), store.RetrievalFilter{
		Genre:  filter.Genre,
		Mood:   filter.Mood,
		Format: filter.Format,
		BPMMin: filter.BPMMin,
		BPMMax: filter.BPMMax,
	}, limit, s.efSearch)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	return candidatesFromRows(rows), nil
}

// RetrieveByIDs fetches candidates by output id, bypassing ANN and filters.
func (s *RetrievalService) RetrieveByIDs(ctx context.Context, ids []uuid.UUID) ([]Candidate, error) {
	rows, err := s.store.RetrieveByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	return candidatesFromRows(rows), nil
}

func candidatesFromRows(rows []store.CandidateRow) []Candidate {
	candidates := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		c := Candidate{
			OutputID:          r.OutputID,
			SongID:            r.SongID,
			Title:             r.Title,
			AudioURL:          r.AudioURL,
			AcousticPrompt:    r.AcousticPrompt.String,
			SoundsDescription: r.SoundsDescription.String,
			PrimaryGenre:      r.PrimaryGenre.String,
			PrimaryMood:       r.PrimaryMood.String,
			MusicalKey:        r.MusicalKey.String,
			Format:            r.Format.String,
			BPM:               int(r.BPM.Int32),
			Tags:              []string(r.Tags),
			Embedding:         r.Embedding.Slice(),
			ImpressionCount:   r.ImpressionCount,
			ClickCount:        r.ClickCount,
			LikeCount:         r.LikeCount,
			PositionSum:       r.PositionSum,
			SemanticScore:     1 - r.CosineDistance,
		}
		if r.CreatedAt.Valid {
			c.HasCreatedAt = true
			c.CreatedAtUnix = r.CreatedAt.Time.Unix()
		}
		candidates = append(candidates, c)
	}
	return candidates
}
