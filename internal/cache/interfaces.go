package cache

import (
	"context"
	"sync/atomic"
	"time"
)

// Store is the narrow caching capability the ranking engine needs: byte-blob
// get/set/delete with a TTL, plus a liveness probe used at boot to decide
// whether to fall back to the in-process implementation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
	Metrics() Metrics
}

// Metrics is a point-in-time snapshot of cache hit/miss/error counters,
// reported on the readiness endpoint.
type Metrics struct {
	Hits   int64
	Misses int64
	Errors int64
}

// counters is embedded by both Store implementations so callers get
// consistent Metrics() behavior regardless of backend.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
}
