package services

import "errors"

var (
	// ErrInvalidInput indicates a request failed validation before any
	// external call was made.
	ErrInvalidInput = errors.New("services: invalid input")
	// ErrEmbeddingUnavailable indicates the embedding provider failed after
	// exhausting retries.
	ErrEmbeddingUnavailable = errors.New("services: embedding provider unavailable")
	// ErrRerankerUnavailable indicates no reranker backend is configured or
	// enabled; callers should fall back to the composite score.
	ErrRerankerUnavailable = errors.New("services: reranker unavailable")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("services: not found")
)
