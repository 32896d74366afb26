package services

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// RerankerBackend is the pluggable cross-encoder scoring capability. The
// model itself lives behind an external scoring endpoint; this package only
// knows how to ask it for a score and how to degrade when it cannot.
type RerankerBackend interface {
	// Available reports whether this backend can currently score passages.
	Available() bool
	// Score returns the raw cross-encoder score for one (query, passage)
	// pair. The scale is model-defined; NeuralReranker normalizes it.
	Score(ctx context.Context, query string, passage string) (float64, error)
}

// UnavailableRerankerBackend is the always-unavailable stub used when
// neural reranking is disabled or unconfigured.
type UnavailableRerankerBackend struct{}

func (UnavailableRerankerBackend) Available() bool { return false }
func (UnavailableRerankerBackend) Score(context.Context, string, string) (float64, error) {
	return 0, ErrRerankerUnavailable
}

// HTTPRerankerBackend calls an external cross-encoder scoring endpoint over
// HTTP, using the same resty transport idiom as EmbeddingProvider.
type HTTPRerankerBackend struct {
	client *resty.Client
}

// NewHTTPRerankerBackend constructs a backend pointed at endpoint.
func NewHTTPRerankerBackend(endpoint string, timeoutSeconds int) *HTTPRerankerBackend {
	return &HTTPRerankerBackend{
		client: resty.New().SetBaseURL(endpoint).SetTimeout(timeoutSecondsToDuration(timeoutSeconds)),
	}
}

func (b *HTTPRerankerBackend) Available() bool { return true }

type rerankScoreRequest struct {
	Query   string `json:"query"`
	Passage string `json:"passage"`
}

type rerankScoreResponse struct {
	Score float64 `json:"score"`
}

func (b *HTTPRerankerBackend) Score(ctx context.Context, query, passage string) (float64, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(rerankScoreRequest{Query: query, Passage: passage}).
		Post("/score")
	if err != nil {
		return 0, fmt.Errorf("reranker request: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("reranker returned status %d", resp.StatusCode())
	}
	var parsed rerankScoreResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, fmt.Errorf("reranker response: %w", err)
	}
	return parsed.Score, nil
}

// NeuralReranker implements C7: cross-encoder rescoring blended with the
// composite score, offloaded to a bounded worker pool so CPU-heavy
// inference never runs inline on a request's calling goroutine.
type NeuralReranker struct {
	backend        RerankerBackend
	workerPoolSize int
	minCandidates  int
	logger         logging.Logger
}

// NewNeuralReranker constructs a NeuralReranker. workerPoolSize <= 0 uses
// runtime.NumCPU().
func NewNeuralReranker(backend RerankerBackend, workerPoolSize, minCandidates int, logger logging.Logger) *NeuralReranker {
	if workerPoolSize <= 0 {
		workerPoolSize = runtime.NumCPU()
	}
	return &NeuralReranker{backend: backend, workerPoolSize: workerPoolSize, minCandidates: minCandidates, logger: logger}
}

// Rerank rescores candidates with the cross-encoder and blends the result
// with each candidate's composite score, falling back to the composite
// score alone when the backend is unavailable, the pool is too small, or
// inference fails.
func (r *NeuralReranker) Rerank(ctx context.Context, query string, candidates []Candidate, topK int, blendWeight float64) []Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	if !r.backend.Available() {
		r.logger.Info(ctx, "reranker unavailable, using composite scores", nil)
		return r.fallbackToComposite(candidates, topK)
	}
	if len(candidates) < r.minCandidates {
		return r.fallbackToComposite(candidates, topK)
	}

	sem := make(chan struct{}, r.workerPoolSize)
	g, gctx := errgroup.WithContext(ctx)
	for i := range candidates {
		i := i
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			passage := buildPassage(candidates[i])
			raw, err := r.backend.Score(gctx, query, passage)
			if err != nil {
				return err
			}
			normalized := clamp01((raw + 10) / 20)
			candidates[i].NeuralScore = &normalized
			candidates[i].FinalScore = blendWeight*normalized + (1-blendWeight)*candidates[i].CompositeScore
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error(ctx, "neural reranker run failed, falling back to composite score", err, nil)
		return r.fallbackToComposite(candidates, topK)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].FinalScore > candidates[j].FinalScore })
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}

func (r *NeuralReranker) fallbackToComposite(candidates []Candidate, topK int) []Candidate {
	for i := range candidates {
		candidates[i].NeuralScore = nil
		candidates[i].FinalScore = candidates[i].CompositeScore
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].FinalScore > candidates[j].FinalScore })
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}

func buildPassage(c Candidate) string {
	parts := []string{}
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.AcousticPrompt != "" {
		parts = append(parts, c.AcousticPrompt)
	}
	if c.SoundsDescription != "" {
		parts = append(parts, c.SoundsDescription)
	}

	metadata := []string{}
	if c.PrimaryGenre != "" {
		metadata = append(metadata, "Genre: "+c.PrimaryGenre)
	}
	if c.PrimaryMood != "" {
		metadata = append(metadata, "Mood: "+c.PrimaryMood)
	}
	if c.BPM != 0 {
		metadata = append(metadata, "BPM: "+strconv.Itoa(c.BPM))
	}
	if len(metadata) > 0 {
		parts = append(parts, strings.Join(metadata, ". "))
	}

	return strings.Join(parts, ". ")
}

func timeoutSecondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
