package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

// StandardsFetcher pulls standard section changes from the standards provider
type StandardsFetcher interface {
	// FetchUpdates returns changes published after since. A nil since fetches everything.
	FetchUpdates(ctx context.Context, since *time.Time) ([]domain.StandardUpdate, error)
}

// SupplierFetcher pulls certificates and scorecards from the certification provider
type SupplierFetcher interface {
	// FetchCertifications returns certificates, optionally limited to the given suppliers
	FetchCertifications(ctx context.Context, supplierIDs []string) ([]domain.Certification, error)

	// FetchPerformance returns supplier scorecards, optionally limited to the given suppliers
	FetchPerformance(ctx context.Context, supplierIDs []string) ([]domain.PerformanceMetric, error)
}

// BenchmarkFetcher pulls industry benchmark points from the benchmark provider
type BenchmarkFetcher interface {
	FetchBenchmarks(ctx context.Context, filter domain.BenchmarkFilter) ([]domain.BenchmarkPoint, error)
}

// FetcherFactory builds provider fetchers from resolved credentials
type FetcherFactory interface {
	Standards(creds domain.ProviderCredentials) StandardsFetcher
	Suppliers(creds domain.ProviderCredentials) SupplierFetcher
	Benchmarks(creds domain.ProviderCredentials) BenchmarkFetcher
}
