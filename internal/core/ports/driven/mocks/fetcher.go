package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

var (
	_ driven.StandardsFetcher = (*MockStandardsFetcher)(nil)
	_ driven.SupplierFetcher  = (*MockSupplierFetcher)(nil)
	_ driven.BenchmarkFetcher = (*MockBenchmarkFetcher)(nil)
	_ driven.FetcherFactory   = (*MockFetcherFactory)(nil)
)

// MockStandardsFetcher is a mock implementation of StandardsFetcher for testing
type MockStandardsFetcher struct {
	mu        sync.Mutex
	Updates   []domain.StandardUpdate
	Err       error
	Calls     int
	LastSince *time.Time
}

func (m *MockStandardsFetcher) FetchUpdates(ctx context.Context, since *time.Time) ([]domain.StandardUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastSince = since
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Updates, nil
}

// MockSupplierFetcher is a mock implementation of SupplierFetcher for testing
type MockSupplierFetcher struct {
	mu              sync.Mutex
	Certifications  []domain.Certification
	Performance     []domain.PerformanceMetric
	CertErr         error
	PerfErr         error
	CertCalls       int
	PerfCalls       int
	LastSupplierIDs []string
}

func (m *MockSupplierFetcher) FetchCertifications(ctx context.Context, supplierIDs []string) ([]domain.Certification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CertCalls++
	m.LastSupplierIDs = supplierIDs
	if m.CertErr != nil {
		return nil, m.CertErr
	}
	return m.Certifications, nil
}

func (m *MockSupplierFetcher) FetchPerformance(ctx context.Context, supplierIDs []string) ([]domain.PerformanceMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PerfCalls++
	m.LastSupplierIDs = supplierIDs
	if m.PerfErr != nil {
		return nil, m.PerfErr
	}
	return m.Performance, nil
}

// MockBenchmarkFetcher is a mock implementation of BenchmarkFetcher for testing
type MockBenchmarkFetcher struct {
	mu         sync.Mutex
	Points     []domain.BenchmarkPoint
	Err        error
	Calls      int
	LastFilter domain.BenchmarkFilter
}

func (m *MockBenchmarkFetcher) FetchBenchmarks(ctx context.Context, filter domain.BenchmarkFilter) ([]domain.BenchmarkPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastFilter = filter
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Points, nil
}

// MockFetcherFactory hands out preset fetchers and remembers the credentials it saw
type MockFetcherFactory struct {
	mu               sync.Mutex
	StandardsFetcher *MockStandardsFetcher
	SupplierFetcher  *MockSupplierFetcher
	BenchmarkFetcher *MockBenchmarkFetcher
	LastCreds        domain.ProviderCredentials
}

// NewMockFetcherFactory creates a factory with empty fetchers
func NewMockFetcherFactory() *MockFetcherFactory {
	return &MockFetcherFactory{
		StandardsFetcher: &MockStandardsFetcher{},
		SupplierFetcher:  &MockSupplierFetcher{},
		BenchmarkFetcher: &MockBenchmarkFetcher{},
	}
}

func (m *MockFetcherFactory) Standards(creds domain.ProviderCredentials) driven.StandardsFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCreds = creds
	return m.StandardsFetcher
}

func (m *MockFetcherFactory) Suppliers(creds domain.ProviderCredentials) driven.SupplierFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCreds = creds
	return m.SupplierFetcher
}

func (m *MockFetcherFactory) Benchmarks(creds domain.ProviderCredentials) driven.BenchmarkFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCreds = creds
	return m.BenchmarkFetcher
}
