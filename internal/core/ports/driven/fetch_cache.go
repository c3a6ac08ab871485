package driven

import (
	"context"
	"time"
)

// FetchCache keeps the last successful provider payload so a sync can
// proceed from cached data while a provider is unavailable (Redis).
type FetchCache interface {
	// Get returns the cached payload for key. found is false on a miss.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)

	// Put stores payload under key for ttl
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
