package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// RetryPolicy re-runs an operation with exponential backoff.
// The wait before attempt n+1 is baseDelay * 2^(n-1).
type RetryPolicy struct {
	sleep   Sleeper
	onRetry func(attempt int, outcome *domain.SyncOutcome)
	logger  *slog.Logger
}

// RetryPolicyConfig holds configuration for RetryPolicy.
type RetryPolicyConfig struct {
	Sleeper Sleeper                                        // Optional: defaults to a context-aware timer
	OnRetry func(attempt int, outcome *domain.SyncOutcome) // Optional: called after each failed attempt that will be retried
	Logger  *slog.Logger
}

// NewRetryPolicy creates a new retry policy.
func NewRetryPolicy(cfg RetryPolicyConfig) *RetryPolicy {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := cfg.Sleeper
	if sleep == nil {
		sleep = sleepContext
	}
	return &RetryPolicy{
		sleep:   sleep,
		onRetry: cfg.OnRetry,
		logger:  logger,
	}
}

// Execute runs op up to maxAttempts times and returns the first successful outcome.
// Outcomes whose failure kind cannot change on retry are returned as-is.
func (p *RetryPolicy) Execute(
	ctx context.Context,
	maxAttempts int,
	baseDelay time.Duration,
	op func(ctx context.Context) *domain.SyncOutcome,
) *domain.SyncOutcome {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	intervals := newIntervals(baseDelay)
	var last *domain.SyncOutcome

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		last = op(ctx)
		if last == nil {
			last = domain.NewFailedOutcome(domain.FailureTransient, "handler returned no outcome")
		}
		if last.OK {
			return last
		}
		if !last.Kind.Retryable() {
			return last
		}
		if attempt == maxAttempts {
			break
		}

		wait := intervals.NextBackOff()
		p.logger.Debug("sync attempt failed, backing off",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"wait", wait,
			"error", last.Error,
		)
		if p.onRetry != nil {
			p.onRetry(attempt, last)
		}

		if err := p.sleep(ctx, wait); err != nil {
			return domain.NewFailedOutcome(domain.FailureTransient,
				fmt.Sprintf("retry aborted after %d attempts: %v", attempt, err))
		}
	}

	return domain.NewFailedOutcome(domain.FailureTransient,
		fmt.Sprintf("operation failed after %d attempts: %s", maxAttempts, last.Error))
}

// newIntervals returns a deterministic doubling sequence starting at base.
func newIntervals(base time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 24 * time.Hour
	b.Reset()
	return b
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
