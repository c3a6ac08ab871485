package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

func newTestFactory(t *testing.T, mux *http.ServeMux) domain.ProviderCredentials {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return domain.ProviderCredentials{BaseURL: srv.URL, APIKey: "secret"}
}

func TestStandardsFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /standards/updates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-02-01T00:00:00Z", r.URL.Query().Get("since"))
		w.Write([]byte(`{"updates":[
			{"code":"BRC-1","section":"1.1","title":"Senior management commitment","version":"9","change_type":"new"},
			{"code":"BRC-1","version":"8","change_type":"superseded"}
		]}`))
	})
	creds := newTestFactory(t, mux)

	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	updates, err := NewFactory(FactoryConfig{}).Standards(creds).FetchUpdates(context.Background(), &since)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, domain.ChangeTypeNew, updates[0].ChangeType)
	assert.Equal(t, "Senior management commitment", updates[0].Title)
	assert.Equal(t, domain.ChangeTypeSuperseded, updates[1].ChangeType)
}

func TestStandardsFetcher_NoSince(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /standards/updates", func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("since"))
		w.Write([]byte(`{}`))
	})
	creds := newTestFactory(t, mux)

	updates, err := NewFactory(FactoryConfig{}).Standards(creds).FetchUpdates(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestSupplierFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /suppliers/certifications", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s1,s2", r.URL.Query().Get("supplierIds"))
		w.Write([]byte(`{"certifications":[{"supplier_id":"s1","cert_type":"BRCGS","status":"valid"}]}`))
	})
	mux.HandleFunc("GET /suppliers/performance", func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("supplierIds"))
		w.Write([]byte(`{"performanceMetrics":[{"supplier_id":"s1","quality_score":92.5}]}`))
	})
	creds := newTestFactory(t, mux)
	fetcher := NewFactory(FactoryConfig{}).Suppliers(creds)

	certs, err := fetcher.FetchCertifications(context.Background(), []string{"s1", "s2"})
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, domain.CertificationValid, certs[0].Status)

	metrics, err := fetcher.FetchPerformance(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 92.5, metrics[0].QualityScore)
}

func TestBenchmarkFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /benchmarks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "dairy", q.Get("industrySector"))
		assert.Equal(t, "quality", q.Get("metricCategory"))
		assert.Equal(t, "2026-01-01T00:00:00Z", q.Get("periodStart"))
		assert.False(t, q.Has("periodEnd"))
		w.Write([]byte(`{"benchmarks":[{"metric_name":"nca_rate","sector":"dairy","value":1.5,"period_start":"2026-01-01","period_end":"2026-03-31"}]}`))
	})
	creds := newTestFactory(t, mux)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points, err := NewFactory(FactoryConfig{}).Benchmarks(creds).FetchBenchmarks(context.Background(), domain.BenchmarkFilter{
		Sector:      "dairy",
		Category:    "quality",
		PeriodStart: &start,
	})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "nca_rate", points[0].MetricName)
	assert.Equal(t, 1.5, points[0].Value)
}

func TestFactory_SharesLimiterPerBaseURL(t *testing.T) {
	f := NewFactory(FactoryConfig{})

	a := f.client(domain.ProviderCredentials{BaseURL: "https://a.example.com", APIKey: "k"})
	b := f.client(domain.ProviderCredentials{BaseURL: "https://a.example.com", APIKey: "k"})
	c := f.client(domain.ProviderCredentials{BaseURL: "https://c.example.com", APIKey: "k"})

	assert.Same(t, a.limiter, b.limiter)
	assert.NotSame(t, a.limiter, c.limiter)
}
