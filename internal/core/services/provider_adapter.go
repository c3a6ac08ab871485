package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

// Environment variable prefixes for provider credentials
const (
	StandardsEnvPrefix     = "STANDARDS"
	CertificationEnvPrefix = "CERTIFICATION"
	BenchmarkEnvPrefix     = "BENCHMARK"
)

const defaultFetchCacheTTL = 7 * 24 * time.Hour

// ProviderAdapterConfig holds what every source adapter needs.
type ProviderAdapterConfig struct {
	Credentials domain.ProviderCredentials // Explicit values win over the environment
	Fetchers    driven.FetcherFactory
	Cache       driven.FetchCache // Optional: serves the last good payload when a provider is down
	CacheTTL    time.Duration     // Default: 7 days
	Clock       func() time.Time
	Logger      *slog.Logger
}

// providerAdapter carries credential resolution and the fetch cache shared by all adapters.
type providerAdapter struct {
	source    domain.SourceType
	envPrefix string
	creds     domain.ProviderCredentials
	fetchers  driven.FetcherFactory
	cache     driven.FetchCache
	cacheTTL  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func newProviderAdapter(source domain.SourceType, envPrefix string, cfg ProviderAdapterConfig) providerAdapter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultFetchCacheTTL
	}
	return providerAdapter{
		source:    source,
		envPrefix: envPrefix,
		creds:     cfg.Credentials.Merge(CredentialsFromEnv(envPrefix)),
		fetchers:  cfg.Fetchers,
		cache:     cfg.Cache,
		cacheTTL:  ttl,
		now:       clock,
		logger:    logger.With("source", source),
	}
}

// CredentialsFromEnv reads <PREFIX>_API_BASE_URL and <PREFIX>_API_KEY
func CredentialsFromEnv(prefix string) domain.ProviderCredentials {
	return domain.ProviderCredentials{
		BaseURL: os.Getenv(prefix + "_API_BASE_URL"),
		APIKey:  os.Getenv(prefix + "_API_KEY"),
	}
}

// Source returns the source type this adapter serves
func (p *providerAdapter) Source() domain.SourceType {
	return p.source
}

// IsConfigured reports whether both endpoint and credential are present
func (p *providerAdapter) IsConfigured() bool {
	return p.creds.IsComplete() && p.fetchers != nil
}

func (p *providerAdapter) notConfigured() error {
	return fmt.Errorf("%w: set %s_API_BASE_URL and %s_API_KEY", domain.ErrNotConfigured, p.envPrefix, p.envPrefix)
}

func (p *providerAdapter) notConfiguredOutcome() *domain.SyncOutcome {
	return domain.NewFailedOutcome(domain.FailureNotConfigured, p.notConfigured().Error())
}

func (p *providerAdapter) cacheKey(kind string) string {
	return fmt.Sprintf("datasync:fetch:%s:%s", p.source, kind)
}

// fetchCached runs fetch and keeps its payload in the cache. When fetch fails and
// a cached payload exists, the cached payload is returned with fromCache set.
func fetchCached[T any](
	ctx context.Context,
	p *providerAdapter,
	kind string,
	fetch func(ctx context.Context) ([]T, error),
) (items []T, fromCache bool, err error) {
	items, err = fetch(ctx)
	if err == nil {
		p.storeCache(ctx, kind, items)
		return items, false, nil
	}
	if p.cache == nil || errors.Is(err, domain.ErrNotConfigured) || ctx.Err() != nil {
		return nil, false, err
	}

	payload, found, cacheErr := p.cache.Get(ctx, p.cacheKey(kind))
	if cacheErr != nil {
		p.logger.Warn("fetch cache lookup failed", "kind", kind, "error", cacheErr)
		return nil, false, err
	}
	if !found {
		return nil, false, err
	}

	var cached []T
	if jsonErr := json.Unmarshal(payload, &cached); jsonErr != nil {
		p.logger.Warn("discarding unreadable cached payload", "kind", kind, "error", jsonErr)
		return nil, false, err
	}

	p.logger.Warn("provider unavailable, using cached payload",
		"kind", kind,
		"records", len(cached),
		"error", err,
	)
	return cached, true, nil
}

func (p *providerAdapter) storeCache(ctx context.Context, kind string, items any) {
	if p.cache == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		p.logger.Warn("failed to encode payload for cache", "kind", kind, "error", err)
		return
	}
	if err := p.cache.Put(ctx, p.cacheKey(kind), payload, p.cacheTTL); err != nil {
		p.logger.Warn("failed to refresh fetch cache", "kind", kind, "error", err)
	}
}

func markCached(out *domain.SyncOutcome, fromCache bool) *domain.SyncOutcome {
	if fromCache {
		out.WithMetadata("fromCache", true)
	}
	return out
}

func nothingToSync(message string) *domain.SyncOutcome {
	return domain.NewSuccessOutcome().WithMetadata("message", message)
}
