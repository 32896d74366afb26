package services

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fntelecomllc/rankingengine/internal/cache"
	"github.com/fntelecomllc/rankingengine/internal/logging"
	"github.com/go-resty/resty/v2"
)

// EmbeddingProvider resolves a query string to a fixed-dimension embedding
// vector, consulting a cache before calling the external embedding model.
type EmbeddingProvider struct {
	client     *resty.Client
	cache      cache.Store
	logger     logging.Logger
	baseURL    string
	model      string
	dimension  int
	maxRetries int
	cacheTTL   time.Duration
}

// NewEmbeddingProvider constructs an EmbeddingProvider. store may be nil to
// bypass caching entirely.
func NewEmbeddingProvider(baseURL, apiKey, model string, dimension, timeoutSeconds, maxRetries int, cacheTTL time.Duration, store cache.Store, logger logging.Logger) *EmbeddingProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Duration(timeoutSeconds) * time.Second).
		SetAuthToken(apiKey)

	return &EmbeddingProvider{
		client:     client,
		cache:      store,
		logger:     logger,
		baseURL:    baseURL,
		model:      model,
		dimension:  dimension,
		maxRetries: maxRetries,
		cacheTTL:   cacheTTL,
	}
}

type embeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed resolves a query to an embedding vector, trying the cache first.
// An empty or whitespace-only query yields a zero vector rather than an
// upstream call.
func (p *EmbeddingProvider) Embed(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return make([]float32, p.dimension), nil
	}

	key := p.cacheKey(query)
	if p.cache != nil {
		if vec, ok := p.getCached(ctx, key); ok {
			return vec, nil
		}
	}

	vec, err := p.embedWithRetry(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	if p.cache != nil {
		p.setCached(ctx, key, vec)
	}
	return vec, nil
}

func (p *EmbeddingProvider) cacheKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("emb:%s:%s", p.model, hex.EncodeToString(sum[:]))
}

func (p *EmbeddingProvider) getCached(ctx context.Context, key string) ([]float32, bool) {
	raw, found, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn(ctx, "embedding cache get failed, degrading to direct compute", logging.Fields{"error": err.Error()})
		return nil, false
	}
	if !found {
		return nil, false
	}
	vec, ok := decodeFloat32Blob(raw)
	if !ok || len(vec) != p.dimension {
		// Dimension mismatch (e.g. stale entry from a prior model/dimension
		// config): evict and fall through to a direct compute.
		_ = p.cache.Delete(ctx, key)
		return nil, false
	}
	return vec, true
}

func (p *EmbeddingProvider) setCached(ctx context.Context, key string, vec []float32) {
	if err := p.cache.Set(ctx, key, encodeFloat32Blob(vec), p.cacheTTL); err != nil {
		p.logger.Warn(ctx, "embedding cache set failed", logging.Fields{"error": err.Error()})
	}
}

func (p *EmbeddingProvider) embedWithRetry(ctx context.Context, query string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Min(math.Pow(2, float64(attempt)), 10)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := p.client.R().
			SetContext(ctx).
			SetBody(embeddingRequest{Model: p.model, Input: query, Dimensions: p.dimension}).
			Post("/embeddings")
		if err != nil {
			lastErr = err
			continue
		}
		if resp.IsError() {
			lastErr = fmt.Errorf("embedding provider returned status %d", resp.StatusCode())
			continue
		}

		var parsed embeddingResponse
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			lastErr = err
			continue
		}
		if len(parsed.Data) == 0 {
			lastErr = fmt.Errorf("embedding provider returned no data")
			continue
		}
		return parsed.Data[0].Embedding, nil
	}
	return nil, lastErr
}

func encodeFloat32Blob(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeFloat32Blob(raw []byte) ([]float32, bool) {
	if len(raw)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, true
}
