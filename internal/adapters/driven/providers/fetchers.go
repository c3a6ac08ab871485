package providers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

var (
	_ driven.StandardsFetcher = (*StandardsFetcher)(nil)
	_ driven.SupplierFetcher  = (*SupplierFetcher)(nil)
	_ driven.BenchmarkFetcher = (*BenchmarkFetcher)(nil)
)

// StandardsFetcher reads GET /standards/updates.
type StandardsFetcher struct {
	client *Client
}

type standardsResponse struct {
	Updates []domain.StandardUpdate `json:"updates"`
}

// FetchUpdates returns section changes published after since.
func (f *StandardsFetcher) FetchUpdates(ctx context.Context, since *time.Time) ([]domain.StandardUpdate, error) {
	query := url.Values{}
	if since != nil {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}

	var resp standardsResponse
	if err := f.client.getJSON(ctx, "/standards/updates", query, &resp); err != nil {
		return nil, err
	}
	return resp.Updates, nil
}

// SupplierFetcher reads the certification provider's supplier endpoints.
type SupplierFetcher struct {
	client *Client
}

type certificationsResponse struct {
	Certifications []domain.Certification `json:"certifications"`
}

type performanceResponse struct {
	PerformanceMetrics []domain.PerformanceMetric `json:"performanceMetrics"`
}

// FetchCertifications reads GET /suppliers/certifications.
func (f *SupplierFetcher) FetchCertifications(ctx context.Context, supplierIDs []string) ([]domain.Certification, error) {
	var resp certificationsResponse
	if err := f.client.getJSON(ctx, "/suppliers/certifications", supplierQuery(supplierIDs), &resp); err != nil {
		return nil, err
	}
	return resp.Certifications, nil
}

// FetchPerformance reads GET /suppliers/performance.
func (f *SupplierFetcher) FetchPerformance(ctx context.Context, supplierIDs []string) ([]domain.PerformanceMetric, error) {
	var resp performanceResponse
	if err := f.client.getJSON(ctx, "/suppliers/performance", supplierQuery(supplierIDs), &resp); err != nil {
		return nil, err
	}
	return resp.PerformanceMetrics, nil
}

func supplierQuery(ids []string) url.Values {
	query := url.Values{}
	if len(ids) > 0 {
		query.Set("supplierIds", strings.Join(ids, ","))
	}
	return query
}

// BenchmarkFetcher reads GET /benchmarks.
type BenchmarkFetcher struct {
	client *Client
}

type benchmarksResponse struct {
	Benchmarks []domain.BenchmarkPoint `json:"benchmarks"`
}

// FetchBenchmarks returns the points matching filter.
func (f *BenchmarkFetcher) FetchBenchmarks(ctx context.Context, filter domain.BenchmarkFilter) ([]domain.BenchmarkPoint, error) {
	query := url.Values{}
	if filter.Sector != "" {
		query.Set("industrySector", filter.Sector)
	}
	if filter.Category != "" {
		query.Set("metricCategory", filter.Category)
	}
	if filter.PeriodStart != nil {
		query.Set("periodStart", filter.PeriodStart.UTC().Format(time.RFC3339))
	}
	if filter.PeriodEnd != nil {
		query.Set("periodEnd", filter.PeriodEnd.UTC().Format(time.RFC3339))
	}

	var resp benchmarksResponse
	if err := f.client.getJSON(ctx, "/benchmarks", query, &resp); err != nil {
		return nil, err
	}
	return resp.Benchmarks, nil
}
