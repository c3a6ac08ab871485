package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driving"
)

// Ensure SyncConfigRegistry implements ConfigRegistry
var _ driving.ConfigRegistry = (*SyncConfigRegistry)(nil)

// SyncConfigRegistry holds exactly one SyncConfig per known source.
// Entries are created at construction and never added or removed afterwards.
type SyncConfigRegistry struct {
	mu      sync.RWMutex
	configs map[domain.SourceType]domain.SyncConfig
	order   []domain.SourceType
	logger  *slog.Logger
}

// NewSyncConfigRegistry creates a registry pre-populated with the default configs.
func NewSyncConfigRegistry(logger *slog.Logger) *SyncConfigRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &SyncConfigRegistry{
		configs: make(map[domain.SourceType]domain.SyncConfig),
		logger:  logger,
	}
	for _, cfg := range domain.DefaultSyncConfigs() {
		r.configs[cfg.Source] = cfg
		r.order = append(r.order, cfg.Source)
	}
	return r
}

// Get returns a copy of the config for source
func (r *SyncConfigRegistry) Get(source domain.SourceType) (domain.SyncConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[source]
	return cfg, ok
}

// List returns copies of all configs in registration order
func (r *SyncConfigRegistry) List() []domain.SyncConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SyncConfig, 0, len(r.order))
	for _, source := range r.order {
		out = append(out, r.configs[source])
	}
	return out
}

// Update merges patch into the config for source.
// Unknown sources are ignored. Invalid results are rejected and leave the config unchanged.
func (r *SyncConfigRegistry) Update(source domain.SourceType, patch domain.SyncConfigPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.configs[source]
	if !ok {
		return nil
	}

	next := patch.Apply(current)
	next.Source = source
	if err := validateConfig(next); err != nil {
		return err
	}

	r.configs[source] = next
	r.logger.Info("sync config updated",
		"source", source,
		"mode", next.Mode,
		"enabled", next.Enabled,
		"schedule", next.Schedule,
	)
	return nil
}

// Enable switches source on. Unknown sources are ignored.
func (r *SyncConfigRegistry) Enable(source domain.SourceType) {
	r.setEnabled(source, true)
}

// Disable switches source off. Unknown sources are ignored.
func (r *SyncConfigRegistry) Disable(source domain.SourceType) {
	r.setEnabled(source, false)
}

func (r *SyncConfigRegistry) setEnabled(source domain.SourceType, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[source]
	if !ok {
		return
	}
	cfg.Enabled = enabled
	r.configs[source] = cfg
}

// NextRun returns the next time the source's schedule fires after the given instant.
// The engine does not fire schedules itself; this is informational for external triggers.
func (r *SyncConfigRegistry) NextRun(source domain.SourceType, after time.Time) (time.Time, error) {
	cfg, ok := r.Get(source)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown source %q", domain.ErrNotFound, source)
	}
	sched, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: schedule %q: %v", domain.ErrInvalidInput, cfg.Schedule, err)
	}
	return sched.Next(after), nil
}

// ApplyOverrides applies patches loaded from the config file.
// Every override is validated before any is applied.
func (r *SyncConfigRegistry) ApplyOverrides(overrides map[domain.SourceType]domain.SyncConfigPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[domain.SourceType]domain.SyncConfig, len(overrides))
	for source, patch := range overrides {
		current, ok := r.configs[source]
		if !ok {
			return fmt.Errorf("%w: unknown source %q in overrides", domain.ErrInvalidInput, source)
		}
		next := patch.Apply(current)
		next.Source = source
		if err := validateConfig(next); err != nil {
			return fmt.Errorf("override for %s: %w", source, err)
		}
		staged[source] = next
	}

	for source, cfg := range staged {
		r.configs[source] = cfg
	}
	return nil
}

func validateConfig(cfg domain.SyncConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("%w: schedule %q: %v", domain.ErrInvalidInput, cfg.Schedule, err)
	}
	return nil
}
