package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-datasync/internal/adapters/driven/metrics"
	"github.com/custodia-labs/sercha-datasync/internal/adapters/driven/postgres"
	"github.com/custodia-labs/sercha-datasync/internal/adapters/driven/providers"
	redisadapter "github.com/custodia-labs/sercha-datasync/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-datasync/internal/config"
	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-datasync/internal/core/services"
)

// engine is the wired sync engine shared by every command that touches storage
type engine struct {
	db           *postgres.DB
	redisClient  *redis.Client
	lock         driven.DistributedLock
	registry     *services.SyncConfigRegistry
	orchestrator *services.SyncOrchestrator

	metricsHandler http.Handler
	closers        []func() error
}

// newRegistry builds the config registry with file overrides applied
func newRegistry(cfg *config.Config, logger *slog.Logger) (*services.SyncConfigRegistry, error) {
	registry := services.NewSyncConfigRegistry(logger)
	overrides, err := cfg.SourceOverrides()
	if err != nil {
		return nil, err
	}
	if err := registry.ApplyOverrides(overrides); err != nil {
		return nil, fmt.Errorf("failed to apply source overrides: %w", err)
	}
	return registry, nil
}

// newEngine connects storage and wires the orchestrator with all three adapters.
// withMetrics registers Prometheus collectors and exposes a scrape handler.
func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, withMetrics bool) (*engine, error) {
	e := &engine{}

	registry, err := newRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	e.registry = registry

	// ===== PostgreSQL =====
	logger.Debug("connecting to postgres")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}
	e.db = db
	e.closers = append(e.closers, db.Close)

	if err := db.InitSchema(ctx); err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// ===== Redis (optional) =====
	var cache driven.FetchCache
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		e.redisClient = redis.NewClient(opts)
		e.closers = append(e.closers, e.redisClient.Close)
		if err := e.redisClient.Ping(ctx).Err(); err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		e.lock = redisadapter.NewLock(e.redisClient)
		cache = redisadapter.NewFetchCache(e.redisClient)
		logger.Debug("using redis for locks and fetch cache")
	} else {
		e.lock = postgres.NewAdvisoryLock(db)
		logger.Debug("using postgres advisory locks, fetch cache disabled")
	}

	// ===== Metrics (optional) =====
	var syncMetrics driven.SyncMetrics
	if withMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := metrics.NewSyncMetrics(reg)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		syncMetrics = m
		e.metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	// ===== Source adapters =====
	fetchers := providers.NewFactory(providers.FactoryConfig{
		RateLimit: providers.RateLimitConfig{
			RequestsPerSecond: cfg.Providers.RequestsPerSecond,
			BurstSize:         cfg.Providers.Burst,
		},
	})
	providerConfig := func(p config.ProviderConfig) services.ProviderAdapterConfig {
		return services.ProviderAdapterConfig{
			Credentials: p.Credentials(),
			Fetchers:    fetchers,
			Cache:       cache,
			CacheTTL:    cfg.Sync.CacheTTL,
			Logger:      logger,
		}
	}

	adapters := []driving.SourceAdapter{
		services.NewStandardsAdapter(services.StandardsAdapterConfig{
			ProviderAdapterConfig: providerConfig(cfg.Providers.Standards),
			Documents:             postgres.NewDocumentStore(db),
		}),
		services.NewCertificationAdapter(services.CertificationAdapterConfig{
			ProviderAdapterConfig: providerConfig(cfg.Providers.Certification),
			Suppliers:             postgres.NewSupplierStore(db),
			SupplierIDs:           cfg.Providers.SupplierIDs,
		}),
		services.NewBenchmarkAdapter(services.BenchmarkAdapterConfig{
			ProviderAdapterConfig: providerConfig(cfg.Providers.Benchmark),
			Store:                 postgres.NewBenchmarkStore(db),
			Filter: domain.BenchmarkFilter{
				Sector:   cfg.Providers.BenchmarkSector,
				Category: cfg.Providers.BenchmarkCategory,
			},
		}),
	}
	for _, a := range adapters {
		if !a.IsConfigured() {
			logger.Warn("provider not configured, runs will fail with not_configured", "source", a.Source())
		}
	}

	e.orchestrator = services.NewSyncOrchestrator(services.SyncOrchestratorConfig{
		Registry:       registry,
		AuditStore:     postgres.NewAuditStore(db),
		Adapters:       adapters,
		Lock:           e.lock,
		LockTTL:        cfg.Sync.LockTTL,
		LockRequired:   cfg.Sync.LockRequired,
		Metrics:        syncMetrics,
		HandlerTimeout: cfg.Sync.HandlerTimeout,
		Logger:         logger,
	})

	return e, nil
}

// Close releases connections in reverse order of opening
func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
	e.closers = nil
}
