package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

// SyncHandler performs one sync attempt for a source.
// A returned error is turned into a failed outcome by the orchestrator.
type SyncHandler func(ctx context.Context, req domain.SyncRequest) (*domain.SyncOutcome, error)

// SourceAdapter fetches from one provider and reconciles into local storage
type SourceAdapter interface {
	// Source returns the source type this adapter serves
	Source() domain.SourceType

	// IsConfigured reports whether both endpoint and credential are available
	IsConfigured() bool

	// PerformSync fetches and reconciles. Failures are reported in the outcome.
	PerformSync(ctx context.Context, req domain.SyncRequest) *domain.SyncOutcome
}

// SyncOrchestrator runs source syncs and keeps the audit trail
type SyncOrchestrator interface {
	// Run performs one sync for a source. handler overrides the registered adapter when non-nil.
	// Never returns a Go error; every failure is a failed outcome.
	Run(ctx context.Context, source domain.SourceType, mode domain.SyncMode, handler SyncHandler) *domain.SyncOutcome

	// Retry repeats Run with exponential backoff.
	// Zero maxAttempts or negative delay fall back to the source config.
	Retry(ctx context.Context, source domain.SourceType, mode domain.SyncMode, handler SyncHandler, maxAttempts int, delay time.Duration) *domain.SyncOutcome

	// History returns audit records newest first. A nil source returns all sources.
	History(ctx context.Context, source *domain.SourceType, limit int) []*domain.AuditRecord

	// LastSuccessful returns the most recent successful run, nil when none
	LastSuccessful(ctx context.Context, source domain.SourceType) *time.Time

	// Register installs the default handler for a source
	Register(adapter SourceAdapter)
}

// ConfigRegistry holds the per-source sync configuration
type ConfigRegistry interface {
	// Get returns the config for a source
	Get(source domain.SourceType) (domain.SyncConfig, bool)

	// List returns every config in display order
	List() []domain.SyncConfig

	// Update merges a patch into an existing config. Unknown sources are ignored.
	Update(source domain.SourceType, patch domain.SyncConfigPatch) error

	// Enable switches a source on. Unknown sources are ignored.
	Enable(source domain.SourceType)

	// Disable switches a source off. Unknown sources are ignored.
	Disable(source domain.SourceType)

	// NextRun returns the next scheduled time after the given instant
	NextRun(source domain.SourceType, after time.Time) (time.Time, error)
}
