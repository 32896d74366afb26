package services

import (
	"context"
	"testing"
)

func TestEncodeDecodeFloat32BlobRoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.2, 3.5, 0}
	blob := encodeFloat32Blob(vec)
	decoded, ok := decodeFloat32Blob(blob)
	if !ok {
		t.Fatal("expected successful decode")
	}
	if len(decoded) != len(vec) {
		t.Fatalf("expected length %d, got %d", len(vec), len(decoded))
	}
	for i := range vec {
		if decoded[i] != vec[i] {
			t.Fatalf("mismatch at index %d: want %v got %v", i, vec[i], decoded[i])
		}
	}
}

func TestDecodeFloat32BlobRejectsMisalignedLength(t *testing.T) {
	_, ok := decodeFloat32Blob([]byte{1, 2, 3})
	if ok {
		t.Fatal("expected decode failure for non-multiple-of-4 byte length")
	}
}

func TestEmbedEmptyQueryReturnsZeroVector(t *testing.T) {
	p := &EmbeddingProvider{dimension: 8}
	vec, err := p.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 8 {
		t.Fatalf("expected dimension 8, got %d", len(vec))
	}
	for _, f := range vec {
		if f != 0 {
			t.Fatalf("expected zero vector for empty query, got %v", vec)
		}
	}
}

func TestCacheKeyIsNormalized(t *testing.T) {
	p := &EmbeddingProvider{model: "test-model"}
	k1 := p.cacheKey("  Hello World  ")
	k2 := p.cacheKey("hello world")
	if k1 != k2 {
		t.Fatalf("expected normalized cache keys to match, got %q vs %q", k1, k2)
	}
}
