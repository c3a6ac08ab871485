package domain

import (
	"fmt"
	"time"
)

// SyncConfig holds the per-source sync settings
type SyncConfig struct {
	Source        SourceType    `json:"source"`
	Mode          SyncMode      `json:"mode"`
	Enabled       bool          `json:"enabled"`
	Schedule      string        `json:"schedule"` // 5-field cron expression, triggered externally
	RetryAttempts int           `json:"retry_attempts"`
	RetryDelay    time.Duration `json:"retry_delay"`
}

// Validate checks the numeric invariants of a config
func (c *SyncConfig) Validate() error {
	if !c.Source.IsValid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidInput, c.Source)
	}
	if !c.Mode.IsValid() {
		return fmt.Errorf("%w: unknown sync mode %q", ErrInvalidInput, c.Mode)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("%w: retry attempts must be at least 1", ErrInvalidInput)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", ErrInvalidInput)
	}
	return nil
}

// SyncConfigPatch is a partial update; nil fields are left unchanged
type SyncConfigPatch struct {
	Mode          *SyncMode      `json:"mode,omitempty" yaml:"mode,omitempty"`
	Enabled       *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Schedule      *string        `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	RetryAttempts *int           `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty"`
	RetryDelay    *time.Duration `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
}

// Apply returns a copy of c with the patch merged in
func (p SyncConfigPatch) Apply(c SyncConfig) SyncConfig {
	if p.Mode != nil {
		c.Mode = *p.Mode
	}
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
	if p.Schedule != nil {
		c.Schedule = *p.Schedule
	}
	if p.RetryAttempts != nil {
		c.RetryAttempts = *p.RetryAttempts
	}
	if p.RetryDelay != nil {
		c.RetryDelay = *p.RetryDelay
	}
	return c
}

// IsEmpty reports whether the patch changes nothing
func (p SyncConfigPatch) IsEmpty() bool {
	return p.Mode == nil && p.Enabled == nil && p.Schedule == nil &&
		p.RetryAttempts == nil && p.RetryDelay == nil
}

// DefaultSyncConfigs returns the initial registry contents. Every source starts disabled.
func DefaultSyncConfigs() []SyncConfig {
	return []SyncConfig{
		{
			Source:        SourceTypeStandards,
			Mode:          SyncModeIncremental,
			Schedule:      "0 2 * * 0", // Sundays 02:00
			RetryAttempts: 3,
			RetryDelay:    5 * time.Second,
		},
		{
			Source:        SourceTypeCertification,
			Mode:          SyncModeIncremental,
			Schedule:      "0 */6 * * *",
			RetryAttempts: 3,
			RetryDelay:    5 * time.Second,
		},
		{
			Source:        SourceTypeBenchmark,
			Mode:          SyncModeFull,
			Schedule:      "0 4 1 * *", // 1st of the month 04:00
			RetryAttempts: 2,
			RetryDelay:    10 * time.Second,
		},
		{
			Source:        SourceTypeQualityGMP,
			Mode:          SyncModeIncremental,
			Schedule:      "0 3 * * 0",
			RetryAttempts: 3,
			RetryDelay:    5 * time.Second,
		},
		{
			Source:        SourceTypePackaging,
			Mode:          SyncModeIncremental,
			Schedule:      "0 1 * * *",
			RetryAttempts: 3,
			RetryDelay:    5 * time.Second,
		},
	}
}
