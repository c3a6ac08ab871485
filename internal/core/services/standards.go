package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driving"
)

var _ driving.SourceAdapter = (*StandardsAdapter)(nil)

// StandardsAdapter syncs standard section changes into knowledge documents.
type StandardsAdapter struct {
	providerAdapter
	documents driven.KnowledgeDocumentStore
}

// StandardsAdapterConfig holds dependencies for StandardsAdapter.
type StandardsAdapterConfig struct {
	ProviderAdapterConfig
	Documents driven.KnowledgeDocumentStore
}

// NewStandardsAdapter creates a standards adapter. Missing credentials fall back to
// STANDARDS_API_BASE_URL and STANDARDS_API_KEY.
func NewStandardsAdapter(cfg StandardsAdapterConfig) *StandardsAdapter {
	return &StandardsAdapter{
		providerAdapter: newProviderAdapter(domain.SourceTypeStandards, StandardsEnvPrefix, cfg.ProviderAdapterConfig),
		documents:       cfg.Documents,
	}
}

// FetchUpdates pulls changes published after since (everything when since is nil).
func (a *StandardsAdapter) FetchUpdates(ctx context.Context, since *time.Time) ([]domain.StandardUpdate, error) {
	if !a.IsConfigured() {
		return nil, a.notConfigured()
	}
	updates, err := a.fetchers.Standards(a.creds).FetchUpdates(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch standard updates: %w", err)
	}
	return updates, nil
}

// SyncUpdates reconciles updates into the document store, continuing past failures.
func (a *StandardsAdapter) SyncUpdates(ctx context.Context, updates []domain.StandardUpdate) *domain.SyncOutcome {
	tally := domain.NewBatchTally(len(updates))

	for _, u := range updates {
		switch u.ChangeType {
		case domain.ChangeTypeSuperseded:
			if err := a.documents.MarkSuperseded(ctx, u.Code, u.Version); err != nil {
				tally.Fail(fmt.Sprintf("failed to supersede %s %s: %v", u.Code, u.Version, err))
				continue
			}
			tally.Updated++

		case domain.ChangeTypeNew, domain.ChangeTypeUpdated:
			doc := domain.NewKnowledgeDocument(u, a.now())
			if err := a.documents.UpsertCurrent(ctx, doc); err != nil {
				tally.Fail(fmt.Sprintf("failed to store %s %s: %v", u.Code, u.Version, err))
				continue
			}
			tally.Inserted++

		default:
			tally.Fail(fmt.Sprintf("unknown change type %q for %s %s", u.ChangeType, u.Code, u.Version))
		}
	}

	return tally.Outcome("totalUpdates")
}

// PerformSync fetches and reconciles. Incremental requests only fetch changes since req.Since.
func (a *StandardsAdapter) PerformSync(ctx context.Context, req domain.SyncRequest) *domain.SyncOutcome {
	if !a.IsConfigured() {
		return a.notConfiguredOutcome()
	}

	var since *time.Time
	if req.Mode == domain.SyncModeIncremental {
		since = req.Since
	}

	updates, fromCache, err := fetchCached(ctx, &a.providerAdapter, "updates",
		func(ctx context.Context) ([]domain.StandardUpdate, error) {
			return a.FetchUpdates(ctx, since)
		})
	if err != nil {
		return domain.NewFailedOutcome(domain.FailureTransient, err.Error())
	}
	if len(updates) == 0 {
		return markCached(nothingToSync("No standard updates to sync"), fromCache)
	}

	return markCached(a.SyncUpdates(ctx, updates), fromCache)
}
