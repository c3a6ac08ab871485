package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

var _ driven.SyncAuditStore = (*MockSyncAuditStore)(nil)

// MockSyncAuditStore is an in-memory SyncAuditStore for testing
type MockSyncAuditStore struct {
	mu      sync.RWMutex
	records []*domain.AuditRecord

	// Error injection
	AppendErr error
	ListErr   error
}

// NewMockSyncAuditStore creates a new MockSyncAuditStore
func NewMockSyncAuditStore() *MockSyncAuditStore {
	return &MockSyncAuditStore{}
}

func (m *MockSyncAuditStore) Append(ctx context.Context, record *domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	cp := *record
	m.records = append(m.records, &cp)
	return nil
}

func (m *MockSyncAuditStore) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var result []*domain.AuditRecord
	for _, r := range m.records {
		if filter.Source != nil && r.Source != *filter.Source {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		result = append(result, r)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MockSyncAuditStore) LastSuccessful(ctx context.Context, source domain.SourceType) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var latest *time.Time
	for _, r := range m.records {
		if r.Source != source || r.Status != domain.SyncStatusSuccess {
			continue
		}
		if latest == nil || r.Timestamp.After(*latest) {
			ts := r.Timestamp
			latest = &ts
		}
	}
	return latest, nil
}

// Helper methods for testing

func (m *MockSyncAuditStore) Records() []*domain.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *MockSyncAuditStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
