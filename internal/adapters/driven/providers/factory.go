package providers

import (
	"net/http"
	"sync"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FetcherFactory = (*Factory)(nil)

// FactoryConfig holds shared HTTP settings for all provider clients.
type FactoryConfig struct {
	HTTPClient *http.Client    // Optional: defaults to a client with a 30s timeout
	RateLimit  RateLimitConfig // Per provider base URL
}

// Factory builds HTTP fetchers. Fetchers for the same base URL share one
// rate limiter so repeated syncs stay inside the provider's quota.
type Factory struct {
	httpClient *http.Client
	rateLimit  RateLimitConfig

	mu       sync.Mutex
	limiters map[string]*RateLimiter
}

// NewFactory creates a fetcher factory.
func NewFactory(cfg FactoryConfig) *Factory {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Factory{
		httpClient: httpClient,
		rateLimit:  cfg.RateLimit,
		limiters:   make(map[string]*RateLimiter),
	}
}

// Standards returns a standards fetcher for creds.
func (f *Factory) Standards(creds domain.ProviderCredentials) driven.StandardsFetcher {
	return &StandardsFetcher{client: f.client(creds)}
}

// Suppliers returns a supplier fetcher for creds.
func (f *Factory) Suppliers(creds domain.ProviderCredentials) driven.SupplierFetcher {
	return &SupplierFetcher{client: f.client(creds)}
}

// Benchmarks returns a benchmark fetcher for creds.
func (f *Factory) Benchmarks(creds domain.ProviderCredentials) driven.BenchmarkFetcher {
	return &BenchmarkFetcher{client: f.client(creds)}
}

func (f *Factory) client(creds domain.ProviderCredentials) *Client {
	f.mu.Lock()
	limiter, ok := f.limiters[creds.BaseURL]
	if !ok {
		limiter = NewRateLimiter(f.rateLimit)
		f.limiters[creds.BaseURL] = limiter
	}
	f.mu.Unlock()

	return NewClient(f.httpClient, creds, limiter)
}
