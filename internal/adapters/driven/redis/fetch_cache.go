package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FetchCache = (*FetchCache)(nil)

// FetchCache keeps the last good provider payload per key, expiring with the TTL
// the caller passes to Put.
type FetchCache struct {
	client redis.UniversalClient
}

// NewFetchCache creates a Redis-backed fetch cache.
func NewFetchCache(client redis.UniversalClient) *FetchCache {
	return &FetchCache{client: client}
}

// Get returns the cached payload. A missing key is a miss, not an error.
func (c *FetchCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached payload %s: %w", key, err)
	}
	return payload, true, nil
}

// Put stores payload under key. A non-positive ttl stores without expiry.
func (c *FetchCache) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache payload %s: %w", key, err)
	}
	return nil
}
