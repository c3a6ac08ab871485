package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driving"
)

var _ driving.SourceAdapter = (*BenchmarkAdapter)(nil)

// BenchmarkAdapter syncs industry benchmark points keyed by metric, sector and period.
type BenchmarkAdapter struct {
	providerAdapter
	store  driven.BenchmarkStore
	filter domain.BenchmarkFilter
}

// BenchmarkAdapterConfig holds dependencies for BenchmarkAdapter.
type BenchmarkAdapterConfig struct {
	ProviderAdapterConfig
	Store  driven.BenchmarkStore
	Filter domain.BenchmarkFilter // Default filter for orchestrated runs
}

// NewBenchmarkAdapter creates a benchmark adapter. Missing credentials fall back to
// BENCHMARK_API_BASE_URL and BENCHMARK_API_KEY.
func NewBenchmarkAdapter(cfg BenchmarkAdapterConfig) *BenchmarkAdapter {
	return &BenchmarkAdapter{
		providerAdapter: newProviderAdapter(domain.SourceTypeBenchmark, BenchmarkEnvPrefix, cfg.ProviderAdapterConfig),
		store:           cfg.Store,
		filter:          cfg.Filter,
	}
}

// FetchBenchmarks pulls benchmark points matching filter.
func (a *BenchmarkAdapter) FetchBenchmarks(ctx context.Context, filter domain.BenchmarkFilter) ([]domain.BenchmarkPoint, error) {
	if !a.IsConfigured() {
		return nil, a.notConfigured()
	}
	points, err := a.fetchers.Benchmarks(a.creds).FetchBenchmarks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch benchmarks: %w", err)
	}
	return points, nil
}

// SyncBenchmarks upserts points on their natural key, continuing past failures.
// A point counts as updated when its key was already stored before the write.
func (a *BenchmarkAdapter) SyncBenchmarks(ctx context.Context, points []domain.BenchmarkPoint) *domain.SyncOutcome {
	tally := domain.NewBatchTally(len(points))

	for i := range points {
		p := &points[i]

		existed, err := a.store.Exists(ctx, p.Key())
		if err != nil {
			// Counts are best effort; the upsert itself decides success
			a.logger.Warn("benchmark existence check failed", "metric", p.MetricName, "error", err)
			existed = false
		}

		if err := a.store.Upsert(ctx, p); err != nil {
			tally.Fail(fmt.Sprintf("failed to sync benchmark %s: %v", p.MetricName, err))
			continue
		}

		if existed {
			tally.Updated++
		} else {
			tally.Inserted++
		}
	}

	return tally.Outcome("totalBenchmarks")
}

// PerformSyncFiltered fetches with the given filter and reconciles.
func (a *BenchmarkAdapter) PerformSyncFiltered(ctx context.Context, filter domain.BenchmarkFilter) *domain.SyncOutcome {
	if !a.IsConfigured() {
		return a.notConfiguredOutcome()
	}

	kind := "benchmarks"
	if filter.Sector != "" || filter.Category != "" {
		kind = fmt.Sprintf("benchmarks:%s:%s", filter.Sector, filter.Category)
	}

	points, fromCache, err := fetchCached(ctx, &a.providerAdapter, kind,
		func(ctx context.Context) ([]domain.BenchmarkPoint, error) {
			return a.FetchBenchmarks(ctx, filter)
		})
	if err != nil {
		return domain.NewFailedOutcome(domain.FailureTransient, err.Error())
	}
	if len(points) == 0 {
		return markCached(nothingToSync("No benchmarks to sync"), fromCache)
	}

	return markCached(a.SyncBenchmarks(ctx, points), fromCache)
}

// PerformSync runs with the adapter's default filter.
func (a *BenchmarkAdapter) PerformSync(ctx context.Context, req domain.SyncRequest) *domain.SyncOutcome {
	return a.PerformSyncFiltered(ctx, a.filter)
}
