package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore is the production Store backend, backed by a real Redis
// connection. It degrades to returning errors (never panics) so the caller
// (the embedding cache in C4) can fall back to a direct compute on failure.
type redisStore struct {
	client *redis.Client
	counters
}

// NewRedisStore dials url (a redis:// connection string) and returns a
// Store. Callers should Ping immediately and fall back to NewMemoryStore if
// it fails, rather than fail boot.
func NewRedisStore(url string) (Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &redisStore{client: redis.NewClient(opts)}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		s.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		s.errors.Add(1)
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	s.hits.Add(1)
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) Metrics() Metrics {
	return s.snapshot()
}

var _ Store = (*redisStore)(nil)
