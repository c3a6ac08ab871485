package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

func TestSyncConfigRegistry_Defaults(t *testing.T) {
	r := NewSyncConfigRegistry(nil)

	configs := r.List()
	require.Len(t, configs, len(domain.AllSourceTypes()))

	for _, cfg := range configs {
		assert.False(t, cfg.Enabled, "%s should start disabled", cfg.Source)
	}

	bench, ok := r.Get(domain.SourceTypeBenchmark)
	require.True(t, ok)
	assert.Equal(t, domain.SyncModeFull, bench.Mode)
	assert.Equal(t, 2, bench.RetryAttempts)
	assert.Equal(t, 10*time.Second, bench.RetryDelay)
}

func TestSyncConfigRegistry_EnableDisable(t *testing.T) {
	r := NewSyncConfigRegistry(nil)

	r.Enable(domain.SourceTypeStandards)
	cfg, _ := r.Get(domain.SourceTypeStandards)
	assert.True(t, cfg.Enabled)

	r.Disable(domain.SourceTypeStandards)
	cfg, _ = r.Get(domain.SourceTypeStandards)
	assert.False(t, cfg.Enabled)
}

func TestSyncConfigRegistry_UnknownSourceIsNoop(t *testing.T) {
	r := NewSyncConfigRegistry(nil)
	before := r.List()

	unknown := domain.SourceType("weather")
	r.Enable(unknown)
	r.Disable(unknown)
	attempts := 9
	err := r.Update(unknown, domain.SyncConfigPatch{RetryAttempts: &attempts})

	assert.NoError(t, err)
	_, ok := r.Get(unknown)
	assert.False(t, ok, "registry must never create entries")
	assert.Equal(t, before, r.List())
}

func TestSyncConfigRegistry_UpdateMerges(t *testing.T) {
	r := NewSyncConfigRegistry(nil)

	mode := domain.SyncModeFull
	delay := 30 * time.Second
	err := r.Update(domain.SourceTypeCertification, domain.SyncConfigPatch{
		Mode:       &mode,
		RetryDelay: &delay,
	})
	require.NoError(t, err)

	cfg, _ := r.Get(domain.SourceTypeCertification)
	assert.Equal(t, domain.SyncModeFull, cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.RetryDelay)
	assert.Equal(t, 3, cfg.RetryAttempts, "untouched fields keep their value")
	assert.Equal(t, "0 */6 * * *", cfg.Schedule)
}

func TestSyncConfigRegistry_UpdateRejectsInvalid(t *testing.T) {
	zero := 0
	negative := -time.Second
	badCron := "every tuesday"

	tests := []struct {
		name  string
		patch domain.SyncConfigPatch
	}{
		{"zero attempts", domain.SyncConfigPatch{RetryAttempts: &zero}},
		{"negative delay", domain.SyncConfigPatch{RetryDelay: &negative}},
		{"bad cron", domain.SyncConfigPatch{Schedule: &badCron}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSyncConfigRegistry(nil)
			before, _ := r.Get(domain.SourceTypeStandards)

			err := r.Update(domain.SourceTypeStandards, tt.patch)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			after, _ := r.Get(domain.SourceTypeStandards)
			assert.Equal(t, before, after)
		})
	}
}

func TestSyncConfigRegistry_NextRun(t *testing.T) {
	r := NewSyncConfigRegistry(nil)

	// Standards default: Sundays 02:00
	after := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) // Wednesday
	next, err := r.NextRun(domain.SourceTypeStandards, after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 8, 2, 0, 0, 0, time.UTC), next)

	_, err = r.NextRun("weather", after)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncConfigRegistry_ApplyOverrides(t *testing.T) {
	r := NewSyncConfigRegistry(nil)

	enabled := true
	schedule := "30 1 * * *"
	err := r.ApplyOverrides(map[domain.SourceType]domain.SyncConfigPatch{
		domain.SourceTypeBenchmark: {Enabled: &enabled, Schedule: &schedule},
	})
	require.NoError(t, err)

	cfg, _ := r.Get(domain.SourceTypeBenchmark)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "30 1 * * *", cfg.Schedule)
}

func TestSyncConfigRegistry_ApplyOverridesAllOrNothing(t *testing.T) {
	r := NewSyncConfigRegistry(nil)

	enabled := true
	zero := 0
	err := r.ApplyOverrides(map[domain.SourceType]domain.SyncConfigPatch{
		domain.SourceTypeBenchmark: {Enabled: &enabled},
		domain.SourceTypeStandards: {RetryAttempts: &zero},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cfg, _ := r.Get(domain.SourceTypeBenchmark)
	assert.False(t, cfg.Enabled, "valid override must not be applied when another fails")

	err = r.ApplyOverrides(map[domain.SourceType]domain.SyncConfigPatch{
		"weather": {Enabled: &enabled},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
