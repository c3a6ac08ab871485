package mocks

import (
	"sync"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

var _ driven.SyncMetrics = (*MockSyncMetrics)(nil)

// MockSyncMetrics counts observations for test assertions
type MockSyncMetrics struct {
	mu            sync.Mutex
	Runs          map[domain.SourceType][]domain.SyncStatus
	Retries       map[domain.SourceType]int
	AuditFailures map[domain.SourceType]int
}

// NewMockSyncMetrics creates a new MockSyncMetrics
func NewMockSyncMetrics() *MockSyncMetrics {
	return &MockSyncMetrics{
		Runs:          make(map[domain.SourceType][]domain.SyncStatus),
		Retries:       make(map[domain.SourceType]int),
		AuditFailures: make(map[domain.SourceType]int),
	}
}

func (m *MockSyncMetrics) ObserveRun(source domain.SourceType, mode domain.SyncMode, outcome *domain.SyncOutcome, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs[source] = append(m.Runs[source], outcome.Status)
}

func (m *MockSyncMetrics) ObserveRetry(source domain.SourceType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Retries[source]++
}

func (m *MockSyncMetrics) ObserveAuditFailure(source domain.SourceType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuditFailures[source]++
}

// RunCount returns the number of runs observed for source
func (m *MockSyncMetrics) RunCount(source domain.SourceType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Runs[source])
}
