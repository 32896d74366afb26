package services

import (
	"testing"

	"github.com/fntelecomllc/rankingengine/internal/domain/core"
)

func makeDiversityCandidates(genres []string) []Candidate {
	candidates := make([]Candidate, len(genres))
	for i, g := range genres {
		candidates[i] = Candidate{
			OutputID:       mustUUID(g + string(rune('a'+i))),
			PrimaryGenre:   g,
			CompositeScore: 1.0 - float64(i)*0.01,
			Embedding:      []float32{float32(i) + 1, 0, 0},
		}
	}
	return candidates
}

func TestDiversifyPassesThroughWhenPoolAtOrBelowK(t *testing.T) {
	svc := NewDiversityService(core.NewMMRDiversifier(0.5, nil), 2)
	candidates := makeDiversityCandidates([]string{"rock", "pop"})
	result := svc.Diversify(candidates, 5)
	if len(result) != 2 {
		t.Fatalf("expected pass-through of 2 candidates, got %d", len(result))
	}
	if result[0].Rank != 1 || result[1].Rank != 2 {
		t.Fatalf("expected ranks assigned in order, got %+v", result)
	}
}

func TestDiversifyEnforcesGenreQuota(t *testing.T) {
	genres := []string{"rock", "rock", "rock", "rock", "pop", "jazz"}
	svc := NewDiversityService(core.NewMMRDiversifier(0.5, nil), 2)
	candidates := makeDiversityCandidates(genres)
	result := svc.Diversify(candidates, 4)

	counts := map[string]int{}
	for _, c := range result {
		counts[c.PrimaryGenre]++
	}
	if counts["rock"] > 2 {
		t.Fatalf("expected rock capped near its quota, got %d of 4 slots: %+v", counts["rock"], counts)
	}
	if counts["pop"] == 0 || counts["jazz"] == 0 {
		t.Fatalf("expected pop and jazz represented under min-per-genre guarantee, got %+v", counts)
	}
}

func TestDiversifySkipsCandidatesMissingEmbeddings(t *testing.T) {
	svc := NewDiversityService(core.NewMMRDiversifier(0.5, nil), 1)
	candidates := makeDiversityCandidates([]string{"rock", "pop", "jazz"})
	candidates[1].Embedding = nil
	result := svc.Diversify(candidates, 2)
	for _, c := range result {
		if c.PrimaryGenre == "pop" {
			t.Fatalf("expected candidate without embedding excluded from MMR selection")
		}
	}
}

func TestDiversifyUsesFinalScoreWhenNeuralScorePresent(t *testing.T) {
	svc := NewDiversityService(core.NewMMRDiversifier(1.0, nil), 1)
	neural := 0.9
	candidates := []Candidate{
		{OutputID: mustUUID("a"), PrimaryGenre: "rock", CompositeScore: 0.1, FinalScore: 0.95, NeuralScore: &neural, Embedding: []float32{1, 0, 0}},
		{OutputID: mustUUID("b"), PrimaryGenre: "pop", CompositeScore: 0.5, FinalScore: 0.2, Embedding: []float32{0, 1, 0}},
	}
	result := svc.Diversify(candidates, 1)
	if len(result) != 1 {
		t.Fatalf("expected 1 result, got %d", len(result))
	}
	if result[0].OutputID != candidates[0].OutputID {
		t.Fatalf("expected candidate with higher final score selected under lambda=1, got %+v", result[0])
	}
}
