package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

var _ driven.FetchCache = (*MockFetchCache)(nil)

// MockFetchCache is an in-memory FetchCache for testing. TTLs are ignored.
type MockFetchCache struct {
	mu      sync.RWMutex
	entries map[string][]byte

	GetErr error
	PutErr error
}

// NewMockFetchCache creates a new MockFetchCache
func NewMockFetchCache() *MockFetchCache {
	return &MockFetchCache{entries: make(map[string][]byte)}
}

func (m *MockFetchCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	payload, ok := m.entries[key]
	return payload, ok, nil
}

func (m *MockFetchCache) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.entries[key] = payload
	return nil
}

// Has reports whether key is cached (for test assertions)
func (m *MockFetchCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}
