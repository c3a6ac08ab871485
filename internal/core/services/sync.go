package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driving"
)

// Ensure SyncOrchestrator implements the driving port
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator runs source syncs.
// Each run of an enabled source:
//  1. Acquires the per-source lock (if configured)
//  2. Resolves the handler (explicit, registered adapter, or handler_missing)
//  3. Invokes it, converting errors and panics into failed outcomes
//  4. Appends exactly one audit record
//  5. Returns the outcome
type SyncOrchestrator struct {
	registry     driving.ConfigRegistry
	auditStore   driven.SyncAuditStore
	lock         driven.DistributedLock
	metrics      driven.SyncMetrics
	logger       *slog.Logger
	now          func() time.Time
	sleep        Sleeper
	lockTTL      time.Duration
	lockRenew    time.Duration
	lockRequired bool
	timeout      time.Duration

	mu       sync.RWMutex
	adapters map[domain.SourceType]driving.SourceAdapter
}

// SyncOrchestratorConfig holds dependencies for SyncOrchestrator.
type SyncOrchestratorConfig struct {
	Registry       driving.ConfigRegistry
	AuditStore     driven.SyncAuditStore
	Adapters       []driving.SourceAdapter
	Lock           driven.DistributedLock // Optional: serialises runs of the same source across instances
	LockTTL        time.Duration          // TTL for the per-source lock (default: 30m)
	LockRenewEvery time.Duration          // How often a held lock's TTL is renewed (default: LockTTL/3)
	LockRequired   bool                   // If true, a lock backend error fails the run instead of proceeding unlocked
	Metrics        driven.SyncMetrics     // Optional
	HandlerTimeout time.Duration          // Optional: bound on a single handler invocation
	Clock          func() time.Time       // Optional: defaults to time.Now
	Sleeper        Sleeper                // Optional: used between retry attempts
	Logger         *slog.Logger
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(cfg SyncOrchestratorConfig) *SyncOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Minute
	}
	lockRenew := cfg.LockRenewEvery
	if lockRenew <= 0 || lockRenew >= lockTTL {
		lockRenew = max(lockTTL/3, time.Millisecond)
	}

	o := &SyncOrchestrator{
		registry:     cfg.Registry,
		auditStore:   cfg.AuditStore,
		lock:         cfg.Lock,
		metrics:      cfg.Metrics,
		logger:       logger,
		now:          clock,
		sleep:        cfg.Sleeper,
		lockTTL:      lockTTL,
		lockRenew:    lockRenew,
		lockRequired: cfg.LockRequired,
		timeout:      cfg.HandlerTimeout,
		adapters:     make(map[domain.SourceType]driving.SourceAdapter),
	}
	for _, a := range cfg.Adapters {
		o.Register(a)
	}
	return o
}

// Register installs the default handler for the adapter's source, replacing any previous one.
func (o *SyncOrchestrator) Register(adapter driving.SourceAdapter) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.adapters[adapter.Source()] = adapter
}

// Adapter returns the registered adapter for source
func (o *SyncOrchestrator) Adapter(source domain.SourceType) (driving.SourceAdapter, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	a, ok := o.adapters[source]
	return a, ok
}

// Run performs one sync of source.
func (o *SyncOrchestrator) Run(
	ctx context.Context,
	source domain.SourceType,
	mode domain.SyncMode,
	handler driving.SyncHandler,
) *domain.SyncOutcome {
	cfg, ok := o.registry.Get(source)
	if !ok || !cfg.Enabled {
		o.logger.Debug("sync skipped, source not enabled", "source", source)
		return domain.NewFailedOutcome(domain.FailureNotEnabled,
			fmt.Sprintf("sync for %s is not enabled", source))
	}

	if o.lock != nil {
		release, out := o.acquire(ctx, source)
		if out != nil {
			return out
		}
		defer release()
	}

	startTime := o.now()
	o.logger.Info("starting sync", "source", source, "mode", mode)

	req := domain.SyncRequest{Source: source, Mode: mode}
	if mode == domain.SyncModeIncremental {
		req.Since = o.LastSuccessful(ctx, source)
	}

	outcome := o.invoke(ctx, source, handler, req)
	finishedAt := o.now()

	o.appendAudit(ctx, source, mode, outcome, finishedAt)

	if o.metrics != nil {
		o.metrics.ObserveRun(source, mode, outcome, finishedAt.Sub(startTime))
	}

	o.logger.Info("sync finished",
		"source", source,
		"mode", mode,
		"status", outcome.Status,
		"inserted", outcome.Inserted,
		"updated", outcome.Updated,
		"deleted", outcome.Deleted,
		"duration_seconds", finishedAt.Sub(startTime).Seconds(),
		"error", outcome.Error,
	)

	return outcome
}

// Retry runs source through the retry policy, one Run (and one audit record) per attempt.
// maxAttempts < 1 or delay < 0 fall back to the source config, or 3 attempts / 5s
// when the source has no config.
func (o *SyncOrchestrator) Retry(
	ctx context.Context,
	source domain.SourceType,
	mode domain.SyncMode,
	handler driving.SyncHandler,
	maxAttempts int,
	delay time.Duration,
) *domain.SyncOutcome {
	fallbackAttempts, fallbackDelay := 3, 5*time.Second
	if cfg, ok := o.registry.Get(source); ok {
		fallbackAttempts, fallbackDelay = cfg.RetryAttempts, cfg.RetryDelay
	}
	if maxAttempts < 1 {
		maxAttempts = fallbackAttempts
	}
	if delay < 0 {
		delay = fallbackDelay
	}

	policy := NewRetryPolicy(RetryPolicyConfig{
		Sleeper: o.sleep,
		Logger:  o.logger.With("source", source),
		OnRetry: func(attempt int, outcome *domain.SyncOutcome) {
			if o.metrics != nil {
				o.metrics.ObserveRetry(source)
			}
		},
	})

	return policy.Execute(ctx, maxAttempts, delay, func(ctx context.Context) *domain.SyncOutcome {
		return o.Run(ctx, source, mode, handler)
	})
}

// History returns audit records newest first. Storage errors yield an empty list.
func (o *SyncOrchestrator) History(ctx context.Context, source *domain.SourceType, limit int) []*domain.AuditRecord {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}

	records, err := o.auditStore.List(ctx, domain.AuditFilter{Source: source, Limit: limit})
	if err != nil {
		o.logger.Error("failed to load sync history", "error", err)
		return []*domain.AuditRecord{}
	}
	if records == nil {
		records = []*domain.AuditRecord{}
	}
	return records
}

// LastSuccessful returns the most recent successful run of source, nil when none or on error.
func (o *SyncOrchestrator) LastSuccessful(ctx context.Context, source domain.SourceType) *time.Time {
	ts, err := o.auditStore.LastSuccessful(ctx, source)
	if err != nil {
		o.logger.Error("failed to load last successful sync", "source", source, "error", err)
		return nil
	}
	return ts
}

// acquire takes the per-source lock. A non-nil outcome means the run must not proceed.
func (o *SyncOrchestrator) acquire(ctx context.Context, source domain.SourceType) (func(), *domain.SyncOutcome) {
	name := lockName(source)
	noop := func() {}

	acquired, err := o.lock.Acquire(ctx, name, o.lockTTL)
	if err != nil {
		o.logger.Warn("failed to acquire sync lock", "source", source, "error", err)
		if o.lockRequired {
			return noop, domain.NewFailedOutcome(domain.FailureTransient,
				fmt.Sprintf("failed to acquire sync lock for %s: %v", source, err))
		}
		// Single-instance mode: run unlocked
		return noop, nil
	}
	if !acquired {
		o.logger.Info("sync already running elsewhere, skipping", "source", source)
		return noop, domain.NewFailedOutcome(domain.FailureInProgress,
			fmt.Sprintf("sync for %s is already in progress", source))
	}

	stopRenew := o.renewLock(ctx, source, name)

	return func() {
		stopRenew()

		// The run context may already be cancelled; release on a fresh one
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := o.lock.Release(releaseCtx, name); err != nil {
			o.logger.Warn("failed to release sync lock", "source", source, "error", err)
		}
	}, nil
}

// renewLock keeps extending the held lock until the returned stop func is called,
// so a run longer than LockTTL stays exclusive.
func (o *SyncOrchestrator) renewLock(ctx context.Context, source domain.SourceType, name string) func() {
	renewCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(o.lockRenew)
		defer ticker.Stop()

		for {
			select {
			case <-renewCtx.Done():
				return
			case <-ticker.C:
				if err := o.lock.Extend(renewCtx, name, o.lockTTL); err != nil && renewCtx.Err() == nil {
					o.logger.Warn("failed to renew sync lock", "source", source, "error", err)
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// invoke runs the handler and always returns an outcome.
func (o *SyncOrchestrator) invoke(
	ctx context.Context,
	source domain.SourceType,
	handler driving.SyncHandler,
	req domain.SyncRequest,
) (outcome *domain.SyncOutcome) {
	if handler == nil {
		adapter, ok := o.Adapter(source)
		if !ok {
			return domain.NewFailedOutcome(domain.FailureHandlerMissing,
				fmt.Sprintf("no handler configured for %s", source))
		}
		handler = adapterHandler(adapter)
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			msg := "unknown error"
			if err, ok := r.(error); ok {
				msg = err.Error()
			}
			o.logger.Error("sync handler panicked", "source", source, "panic", r)
			outcome = domain.NewFailedOutcome(domain.FailureTransient, msg)
		}
	}()

	result, err := handler(ctx, req)
	if err != nil {
		return o.failSync(source, err)
	}
	if result == nil {
		return domain.NewFailedOutcome(domain.FailureTransient, "handler returned no outcome")
	}
	return result
}

// failSync converts a handler error into a failed outcome.
func (o *SyncOrchestrator) failSync(source domain.SourceType, err error) *domain.SyncOutcome {
	o.logger.Warn("sync handler failed", "source", source, "error", err)

	kind := domain.FailureTransient
	switch {
	case errors.Is(err, domain.ErrNotEnabled):
		kind = domain.FailureNotEnabled
	case errors.Is(err, domain.ErrNotConfigured):
		kind = domain.FailureNotConfigured
	case errors.Is(err, domain.ErrHandlerMissing):
		kind = domain.FailureHandlerMissing
	case errors.Is(err, domain.ErrSyncInProgress):
		kind = domain.FailureInProgress
	}
	return domain.NewFailedOutcome(kind, err.Error())
}

// appendAudit writes the audit record. Failures are logged and never change the outcome.
func (o *SyncOrchestrator) appendAudit(
	ctx context.Context,
	source domain.SourceType,
	mode domain.SyncMode,
	outcome *domain.SyncOutcome,
	at time.Time,
) {
	record := domain.NewAuditRecord(source, mode, outcome, at)
	record.ID = uuid.NewString()

	if err := o.auditStore.Append(ctx, record); err != nil {
		o.logger.Error("failed to write sync audit record",
			"source", source,
			"status", outcome.Status,
			"error", err,
		)
		if o.metrics != nil {
			o.metrics.ObserveAuditFailure(source)
		}
	}
}

func adapterHandler(adapter driving.SourceAdapter) driving.SyncHandler {
	return func(ctx context.Context, req domain.SyncRequest) (*domain.SyncOutcome, error) {
		return adapter.PerformSync(ctx, req), nil
	}
}

func lockName(source domain.SourceType) string {
	return "sync:" + string(source)
}
