package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryStore is the in-process Store, used when no Redis URL is configured
// and automatically when the Redis Ping at startup fails; embeddings are
// then cached in this process only rather than startup failing.
type memoryStore struct {
	inner *gocache.Cache
	counters
}

// NewMemoryStore creates an in-process Store with the given default TTL and
// a cleanup sweep at cleanupInterval.
func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) Store {
	return &memoryStore{inner: gocache.New(defaultTTL, cleanupInterval)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.inner.Get(key)
	if !ok {
		s.misses.Add(1)
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		s.errors.Add(1)
		return nil, false, nil
	}
	s.hits.Add(1)
	return b, true, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.inner.Set(key, value, ttl)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.inner.Delete(key)
	return nil
}

func (s *memoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}

func (s *memoryStore) Metrics() Metrics {
	return s.snapshot()
}

var _ Store = (*memoryStore)(nil)
