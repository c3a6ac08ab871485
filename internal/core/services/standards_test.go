package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven/mocks"
)

var testCreds = domain.ProviderCredentials{BaseURL: "https://provider.example.com", APIKey: "test-key"}

func newTestStandardsAdapter(t *testing.T) (*StandardsAdapter, *mocks.MockFetcherFactory, *mocks.MockKnowledgeDocumentStore) {
	t.Helper()
	fetchers := mocks.NewMockFetcherFactory()
	docs := mocks.NewMockKnowledgeDocumentStore()
	adapter := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{Credentials: testCreds, Fetchers: fetchers},
		Documents:             docs,
	})
	return adapter, fetchers, docs
}

func TestStandardsAdapter_IsConfigured(t *testing.T) {
	t.Setenv("STANDARDS_API_BASE_URL", "")
	t.Setenv("STANDARDS_API_KEY", "")

	fetchers := mocks.NewMockFetcherFactory()

	missingKey := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{
			Credentials: domain.ProviderCredentials{BaseURL: "https://provider.example.com"},
			Fetchers:    fetchers,
		},
	})
	assert.False(t, missingKey.IsConfigured())

	missingURL := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{
			Credentials: domain.ProviderCredentials{APIKey: "test-key"},
			Fetchers:    fetchers,
		},
	})
	assert.False(t, missingURL.IsConfigured())
	_, err := missingURL.FetchUpdates(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	complete := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{Credentials: testCreds, Fetchers: fetchers},
	})
	assert.True(t, complete.IsConfigured())
}

func TestStandardsAdapter_CredentialsFromEnv(t *testing.T) {
	t.Setenv("STANDARDS_API_BASE_URL", "https://env.example.com")
	t.Setenv("STANDARDS_API_KEY", "env-key")

	fetchers := mocks.NewMockFetcherFactory()
	fetchers.StandardsFetcher.Updates = []domain.StandardUpdate{}

	fromEnv := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{Fetchers: fetchers},
	})
	require.True(t, fromEnv.IsConfigured())

	_, err := fromEnv.FetchUpdates(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", fetchers.LastCreds.BaseURL)

	explicit := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{
			Credentials: domain.ProviderCredentials{BaseURL: "https://explicit.example.com"},
			Fetchers:    fetchers,
		},
	})
	_, err = explicit.FetchUpdates(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://explicit.example.com", fetchers.LastCreds.BaseURL, "explicit values win")
	assert.Equal(t, "env-key", fetchers.LastCreds.APIKey)
}

func TestStandardsAdapter_NotConfigured(t *testing.T) {
	t.Setenv("STANDARDS_API_BASE_URL", "")
	t.Setenv("STANDARDS_API_KEY", "")

	adapter := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{Fetchers: mocks.NewMockFetcherFactory()},
	})

	_, err := adapter.FetchUpdates(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Contains(t, err.Error(), "STANDARDS_API_BASE_URL")

	out := adapter.PerformSync(context.Background(), domain.SyncRequest{Mode: domain.SyncModeFull})
	assert.False(t, out.OK)
	assert.Equal(t, domain.FailureNotConfigured, out.Kind)
}

func TestStandardsAdapter_SyncUpdates(t *testing.T) {
	adapter, _, docs := newTestStandardsAdapter(t)
	docs.Put(&domain.KnowledgeDocument{Code: "BRC-1", Version: "8", Status: domain.DocumentStatusCurrent})

	out := adapter.SyncUpdates(context.Background(), []domain.StandardUpdate{
		{Code: "BRC-1", Version: "9", Title: "Senior management commitment", ChangeType: domain.ChangeTypeNew},
		{Code: "BRC-2", Version: "9", Title: "HACCP", ChangeType: domain.ChangeTypeUpdated},
		{Code: "BRC-1", Version: "8", ChangeType: domain.ChangeTypeSuperseded},
	})

	assert.True(t, out.OK)
	assert.Equal(t, domain.SyncStatusSuccess, out.Status)
	assert.Equal(t, 2, out.Inserted)
	assert.Equal(t, 1, out.Updated)
	assert.Equal(t, 3, out.Metadata["totalUpdates"])

	current, ok := docs.Get("BRC-1", "9")
	require.True(t, ok)
	assert.Equal(t, domain.DocumentStatusCurrent, current.Status)
	assert.Equal(t, "Senior management commitment", current.Name)
	assert.Equal(t, domain.DocumentTypeStandard, current.DocumentType)
}

func TestStandardsAdapter_NewVersionSupersedesOld(t *testing.T) {
	adapter, _, docs := newTestStandardsAdapter(t)
	docs.Put(&domain.KnowledgeDocument{Code: "BRC-1", Version: "8", Status: domain.DocumentStatusCurrent})

	adapter.SyncUpdates(context.Background(), []domain.StandardUpdate{
		{Code: "BRC-1", Version: "9", ChangeType: domain.ChangeTypeNew},
	})

	old, _ := docs.Get("BRC-1", "8")
	assert.Equal(t, domain.DocumentStatusSuperseded, old.Status)
}

func TestStandardsAdapter_SupersedeIsIdempotent(t *testing.T) {
	adapter, _, docs := newTestStandardsAdapter(t)
	docs.Put(&domain.KnowledgeDocument{Code: "BRC-1", Version: "8", Status: domain.DocumentStatusCurrent})

	batch := []domain.StandardUpdate{
		{Code: "BRC-1", Version: "9", ChangeType: domain.ChangeTypeNew},
		{Code: "BRC-1", Version: "8", ChangeType: domain.ChangeTypeSuperseded},
	}

	first := adapter.SyncUpdates(context.Background(), batch)
	assert.True(t, first.OK, first.Error)
	assert.Equal(t, domain.SyncStatusSuccess, first.Status)
	assert.Equal(t, 1, first.Inserted)
	assert.Equal(t, 1, first.Updated)

	replay := adapter.SyncUpdates(context.Background(), batch)
	assert.True(t, replay.OK, replay.Error)
	assert.Equal(t, domain.SyncStatusSuccess, replay.Status)

	again := adapter.SyncUpdates(context.Background(), batch[1:])
	assert.True(t, again.OK, again.Error)
	assert.Equal(t, 1, again.Updated)

	old, _ := docs.Get("BRC-1", "8")
	assert.Equal(t, domain.DocumentStatusSuperseded, old.Status)
	current, _ := docs.Get("BRC-1", "9")
	assert.Equal(t, domain.DocumentStatusCurrent, current.Status)
}

func TestStandardsAdapter_PartialFailure(t *testing.T) {
	adapter, _, docs := newTestStandardsAdapter(t)
	docs.FailCodes["BRC-2"] = errors.New("constraint violation")

	out := adapter.SyncUpdates(context.Background(), []domain.StandardUpdate{
		{Code: "BRC-1", Version: "9", ChangeType: domain.ChangeTypeNew},
		{Code: "BRC-2", Version: "9", ChangeType: domain.ChangeTypeNew},
		{Code: "BRC-3", Version: "9", ChangeType: domain.ChangeTypeNew},
	})

	assert.False(t, out.OK)
	assert.Equal(t, domain.SyncStatusPartial, out.Status)
	assert.Equal(t, 2, out.Inserted)
	assert.Equal(t, 1, out.Metadata["errors"])
	assert.Contains(t, out.Error, "constraint violation")
}

func TestStandardsAdapter_SupersedeMissingIsError(t *testing.T) {
	adapter, _, _ := newTestStandardsAdapter(t)

	out := adapter.SyncUpdates(context.Background(), []domain.StandardUpdate{
		{Code: "BRC-9", Version: "1", ChangeType: domain.ChangeTypeSuperseded},
	})

	assert.Equal(t, domain.SyncStatusFailed, out.Status)
	assert.Contains(t, out.Error, "not found")
}

func TestStandardsAdapter_EmptyBatch(t *testing.T) {
	adapter, _, _ := newTestStandardsAdapter(t)

	out := adapter.SyncUpdates(context.Background(), nil)
	assert.True(t, out.OK)
	assert.Equal(t, domain.SyncStatusSuccess, out.Status)
	assert.Zero(t, out.Total())
}

func TestStandardsAdapter_PerformSync(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		adapter, fetchers, _ := newTestStandardsAdapter(t)
		fetchers.StandardsFetcher.Err = errors.New("503 service unavailable")

		out := adapter.PerformSync(context.Background(), domain.SyncRequest{Mode: domain.SyncModeFull})
		assert.False(t, out.OK)
		assert.Equal(t, domain.FailureTransient, out.Kind)
		assert.Contains(t, out.Error, "503")
	})

	t.Run("nothing to sync", func(t *testing.T) {
		adapter, _, _ := newTestStandardsAdapter(t)

		out := adapter.PerformSync(context.Background(), domain.SyncRequest{Mode: domain.SyncModeFull})
		assert.True(t, out.OK)
		assert.Zero(t, out.Total())
		assert.Contains(t, out.Metadata["message"], "No standard updates")
	})

	t.Run("incremental passes since", func(t *testing.T) {
		adapter, fetchers, _ := newTestStandardsAdapter(t)
		since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		adapter.PerformSync(context.Background(), domain.SyncRequest{Mode: domain.SyncModeIncremental, Since: &since})
		require.NotNil(t, fetchers.StandardsFetcher.LastSince)
		assert.Equal(t, since, *fetchers.StandardsFetcher.LastSince)

		adapter.PerformSync(context.Background(), domain.SyncRequest{Mode: domain.SyncModeFull, Since: &since})
		assert.Nil(t, fetchers.StandardsFetcher.LastSince)
	})
}

func TestStandardsAdapter_CacheFallback(t *testing.T) {
	fetchers := mocks.NewMockFetcherFactory()
	docs := mocks.NewMockKnowledgeDocumentStore()
	cache := mocks.NewMockFetchCache()
	adapter := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{Credentials: testCreds, Fetchers: fetchers, Cache: cache},
		Documents:             docs,
	})

	fetchers.StandardsFetcher.Updates = []domain.StandardUpdate{
		{Code: "BRC-1", Version: "9", ChangeType: domain.ChangeTypeNew},
	}
	first := adapter.PerformSync(context.Background(), domain.SyncRequest{Mode: domain.SyncModeFull})
	require.True(t, first.OK)
	assert.Nil(t, first.Metadata["fromCache"])
	assert.True(t, cache.Has("datasync:fetch:standards:updates"))

	fetchers.StandardsFetcher.Err = errors.New("connection refused")
	second := adapter.PerformSync(context.Background(), domain.SyncRequest{Mode: domain.SyncModeFull})
	assert.True(t, second.OK)
	assert.Equal(t, 1, second.Inserted)
	assert.Equal(t, true, second.Metadata["fromCache"])
}

func TestStandardsAdapter_CacheMissKeepsFetchError(t *testing.T) {
	fetchers := mocks.NewMockFetcherFactory()
	fetchers.StandardsFetcher.Err = errors.New("connection refused")
	adapter := NewStandardsAdapter(StandardsAdapterConfig{
		ProviderAdapterConfig: ProviderAdapterConfig{
			Credentials: testCreds,
			Fetchers:    fetchers,
			Cache:       mocks.NewMockFetchCache(),
		},
		Documents: mocks.NewMockKnowledgeDocumentStore(),
	})

	out := adapter.PerformSync(context.Background(), domain.SyncRequest{Mode: domain.SyncModeFull})
	assert.False(t, out.OK)
	assert.Contains(t, out.Error, "connection refused")
}
