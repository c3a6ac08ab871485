package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

var (
	_ driven.KnowledgeDocumentStore = (*MockKnowledgeDocumentStore)(nil)
	_ driven.SupplierStore          = (*MockSupplierStore)(nil)
	_ driven.BenchmarkStore         = (*MockBenchmarkStore)(nil)
)

type docKey struct {
	code    string
	version string
}

// MockKnowledgeDocumentStore is an in-memory KnowledgeDocumentStore for testing
type MockKnowledgeDocumentStore struct {
	mu   sync.RWMutex
	docs map[docKey]*domain.KnowledgeDocument

	// FailCodes makes writes for these codes return the mapped error
	FailCodes map[string]error
}

// NewMockKnowledgeDocumentStore creates a new MockKnowledgeDocumentStore
func NewMockKnowledgeDocumentStore() *MockKnowledgeDocumentStore {
	return &MockKnowledgeDocumentStore{
		docs:      make(map[docKey]*domain.KnowledgeDocument),
		FailCodes: make(map[string]error),
	}
}

func (m *MockKnowledgeDocumentStore) UpsertCurrent(ctx context.Context, doc *domain.KnowledgeDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailCodes[doc.Code]; err != nil {
		return err
	}

	for k, existing := range m.docs {
		if k.code == doc.Code && k.version != doc.Version && existing.Status == domain.DocumentStatusCurrent {
			existing.Status = domain.DocumentStatusSuperseded
		}
	}

	cp := *doc
	cp.Status = domain.DocumentStatusCurrent
	m.docs[docKey{doc.Code, doc.Version}] = &cp
	return nil
}

func (m *MockKnowledgeDocumentStore) MarkSuperseded(ctx context.Context, code, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailCodes[code]; err != nil {
		return err
	}

	doc, ok := m.docs[docKey{code, version}]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = domain.DocumentStatusSuperseded
	return nil
}

// Helper methods for testing

func (m *MockKnowledgeDocumentStore) Put(doc *domain.KnowledgeDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[docKey{doc.Code, doc.Version}] = &cp
}

func (m *MockKnowledgeDocumentStore) Get(code, version string) (*domain.KnowledgeDocument, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[docKey{code, version}]
	return doc, ok
}

// MockSupplierStore is an in-memory SupplierStore for testing
type MockSupplierStore struct {
	mu           sync.RWMutex
	known        map[string]bool
	certs        map[string]domain.Certification
	performance  map[string]domain.PerformanceMetric
	AllowUnknown bool
}

// NewMockSupplierStore creates a store that knows the given supplier IDs
func NewMockSupplierStore(supplierIDs ...string) *MockSupplierStore {
	m := &MockSupplierStore{
		known:       make(map[string]bool),
		certs:       make(map[string]domain.Certification),
		performance: make(map[string]domain.PerformanceMetric),
	}
	for _, id := range supplierIDs {
		m.known[id] = true
	}
	return m
}

func (m *MockSupplierStore) UpdateCertification(ctx context.Context, cert *domain.Certification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.AllowUnknown && !m.known[cert.SupplierID] {
		return domain.ErrNotFound
	}
	m.certs[cert.SupplierID] = *cert
	return nil
}

func (m *MockSupplierStore) UpdatePerformance(ctx context.Context, metric *domain.PerformanceMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.AllowUnknown && !m.known[metric.SupplierID] {
		return domain.ErrNotFound
	}
	m.performance[metric.SupplierID] = *metric
	return nil
}

// Helper methods for testing

func (m *MockSupplierStore) Certification(supplierID string) (domain.Certification, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.certs[supplierID]
	return c, ok
}

func (m *MockSupplierStore) Performance(supplierID string) (domain.PerformanceMetric, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.performance[supplierID]
	return p, ok
}

// MockBenchmarkStore is an in-memory BenchmarkStore for testing
type MockBenchmarkStore struct {
	mu     sync.RWMutex
	points map[domain.BenchmarkKey]domain.BenchmarkPoint

	// FailMetrics makes upserts for these metric names return the mapped error
	FailMetrics map[string]error
	ExistsErr   error
}

// NewMockBenchmarkStore creates a new MockBenchmarkStore
func NewMockBenchmarkStore() *MockBenchmarkStore {
	return &MockBenchmarkStore{
		points:      make(map[domain.BenchmarkKey]domain.BenchmarkPoint),
		FailMetrics: make(map[string]error),
	}
}

func (m *MockBenchmarkStore) Exists(ctx context.Context, key domain.BenchmarkKey) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	_, ok := m.points[key]
	return ok, nil
}

func (m *MockBenchmarkStore) Upsert(ctx context.Context, point *domain.BenchmarkPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailMetrics[point.MetricName]; err != nil {
		return err
	}
	m.points[point.Key()] = *point
	return nil
}

// Helper methods for testing

func (m *MockBenchmarkStore) Get(key domain.BenchmarkKey) (domain.BenchmarkPoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.points[key]
	return p, ok
}

func (m *MockBenchmarkStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}
