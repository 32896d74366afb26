package services

import (
	"context"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/observability"
)

var pipelineTracer = observability.Tracer("rankingengine/pipeline")

// PipelineService sequences C5 (retrieval) -> C6 (ranking) -> C7 (rerank) ->
// C8 (diversity) into the single online request path, timing each stage.
type PipelineService struct {
	retrieval     *RetrievalService
	ranking       *RankingService
	reranker      *NeuralReranker
	diversity     *DiversityService
	poolSize      int
	rerankTopK    int
	blendWeight   float64
	stageObserver func(stage string, d time.Duration)
}

// SetStageObserver installs a callback invoked with each stage's wall-clock
// duration, feeding the pipeline-stage histogram.
func (p *PipelineService) SetStageObserver(fn func(stage string, d time.Duration)) {
	p.stageObserver = fn
}

func (p *PipelineService) observeStage(stage string, d time.Duration) {
	if p.stageObserver != nil {
		p.stageObserver(stage, d)
	}
}

// NewPipelineService constructs a PipelineService. poolSize bounds how many
// candidates survive ranking before reranking; rerankTopK bounds how many
// survive reranking before diversity selection.
func NewPipelineService(retrieval *RetrievalService, ranking *RankingService, reranker *NeuralReranker, diversity *DiversityService, poolSize, rerankTopK int, blendWeight float64) *PipelineService {
	return &PipelineService{
		retrieval:   retrieval,
		ranking:     ranking,
		reranker:    reranker,
		diversity:   diversity,
		poolSize:    poolSize,
		rerankTopK:  rerankTopK,
		blendWeight: blendWeight,
	}
}

// PipelineResult is the timed outcome of one Search call.
type PipelineResult struct {
	Results         []Candidate
	TotalCandidates int
	RetrievalMs     int64
	RankingMs       int64
	RerankMs        int64
	DiversityMs     int64
	TotalMs         int64
}

// Search runs the full online pipeline for one query and returns the final
// diversified, ranked list of at most k results.
func (p *PipelineService) Search(ctx context.Context, query string, filter SearchFilter, retrievalLimit, k int) (PipelineResult, error) {
	start := time.Now()
	ctx, span := pipelineTracer.Start(ctx, "pipeline.search")
	defer span.End()

	t0 := time.Now()
	rctx, rspan := pipelineTracer.Start(ctx, "pipeline.retrieval")
	candidates, err := p.retrieval.Search(rctx, query, filter, retrievalLimit)
	rspan.End()
	retrievalDur := time.Since(t0)
	p.observeStage("retrieval", retrievalDur)
	if err != nil {
		return PipelineResult{}, err
	}
	totalCandidates := len(candidates)

	t1 := time.Now()
	_, kspan := pipelineTracer.Start(ctx, "pipeline.ranking")
	ranked := p.ranking.Rank(candidates, p.poolSize)
	kspan.End()
	rankingDur := time.Since(t1)
	p.observeStage("ranking", rankingDur)

	t2 := time.Now()
	nctx, nspan := pipelineTracer.Start(ctx, "pipeline.rerank")
	reranked := p.reranker.Rerank(nctx, query, ranked, p.rerankTopK, p.blendWeight)
	nspan.End()
	rerankDur := time.Since(t2)
	p.observeStage("rerank", rerankDur)

	t3 := time.Now()
	_, dspan := pipelineTracer.Start(ctx, "pipeline.diversity")
	final := p.diversity.Diversify(reranked, k)
	dspan.End()
	diversityDur := time.Since(t3)
	p.observeStage("diversity", diversityDur)

	return PipelineResult{
		Results:         final,
		TotalCandidates: totalCandidates,
		RetrievalMs:     retrievalDur.Milliseconds(),
		RankingMs:       rankingDur.Milliseconds(),
		RerankMs:        rerankDur.Milliseconds(),
		DiversityMs:     diversityDur.Milliseconds(),
		TotalMs:         time.Since(start).Milliseconds(),
	}, nil
}
