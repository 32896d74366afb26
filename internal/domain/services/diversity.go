package services

import "github.com/fntelecomllc/rankingengine/internal/domain/core"

// DiversityService implements C8: wraps the MMR diversifier (C3), selecting
// embeddings and relevance from the reranked pool and allocating genre
// quotas before delegating to MMR.
type DiversityService struct {
	mmr         *core.MMRDiversifier
	minPerGenre int
}

// NewDiversityService constructs a DiversityService.
func NewDiversityService(mmr *core.MMRDiversifier, minPerGenre int) *DiversityService {
	return &DiversityService{mmr: mmr, minPerGenre: minPerGenre}
}

// Diversify produces the final ordered result list of size k from the
// reranked candidate pool. If the pool is already at or below k, it is
// returned unchanged without running MMR.
func (d *DiversityService) Diversify(candidates []Candidate, k int) []Candidate {
	if len(candidates) <= k {
		for i := range candidates {
			candidates[i].Rank = i + 1
		}
		return candidates
	}

	eligible := make([]Candidate, 0, len(candidates))
	mmrCandidates := make([]core.MMRCandidate, 0, len(candidates))
	genres := make([]string, 0, len(candidates))

	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		relevance := c.CompositeScore
		if c.NeuralScore != nil {
			relevance = c.FinalScore
		}
		eligible = append(eligible, c)
		mmrCandidates = append(mmrCandidates, core.MMRCandidate{
			ID:             c.OutputID.String(),
			RelevanceScore: relevance,
			Embedding:      c.Embedding,
			PrimaryGenre:   c.PrimaryGenre,
		})
		genres = append(genres, c.PrimaryGenre)
	}

	byID := make(map[string]Candidate, len(eligible))
	for _, c := range eligible {
		byID[c.OutputID.String()] = c
	}

	genreSlots := core.AllocateGenreSlots(genres, k, d.minPerGenre)
	results := d.mmr.Diversify(mmrCandidates, k, genreSlots)

	final := make([]Candidate, 0, len(results))
	for _, r := range results {
		c := byID[r.ID]
		c.MMRScore = r.MMRScore
		c.RedundancyScore = r.RedundancyScore
		c.Rank = r.Rank
		final = append(final, c)
	}
	return final
}
