package domain

import "fmt"

// SourceType identifies an external data provider
type SourceType string

const (
	SourceTypeStandards     SourceType = "standards"
	SourceTypeCertification SourceType = "certification"
	SourceTypeBenchmark     SourceType = "benchmark"

	// Configured placeholders with no handler wired
	SourceTypeQualityGMP SourceType = "quality-gmp"
	SourceTypePackaging  SourceType = "packaging"
)

// AllSourceTypes returns every known source in display order
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeStandards,
		SourceTypeCertification,
		SourceTypeBenchmark,
		SourceTypeQualityGMP,
		SourceTypePackaging,
	}
}

// IsValid reports whether s is a known source
func (s SourceType) IsValid() bool {
	for _, known := range AllSourceTypes() {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSourceType converts a string into a known SourceType
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: unknown source %q", ErrInvalidInput, s)
	}
	return st, nil
}

// SyncMode determines whether a run fetches everything or only deltas
type SyncMode string

const (
	SyncModeFull        SyncMode = "full"
	SyncModeIncremental SyncMode = "incremental"
)

// IsValid reports whether m is a known sync mode
func (m SyncMode) IsValid() bool {
	return m == SyncModeFull || m == SyncModeIncremental
}

// ParseSyncMode converts a string into a SyncMode.
// An empty string yields SyncModeIncremental.
func ParseSyncMode(s string) (SyncMode, error) {
	if s == "" {
		return SyncModeIncremental, nil
	}
	m := SyncMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown sync mode %q", ErrInvalidInput, s)
	}
	return m, nil
}

// ProviderCredentials holds the endpoint and access key for a provider API
type ProviderCredentials struct {
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"-"` // Never serialize
}

// IsComplete reports whether both endpoint and key are present.
// Partial credentials count as unconfigured.
func (c ProviderCredentials) IsComplete() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// Merge fills empty fields of c from fallback. Values already set on c win.
func (c ProviderCredentials) Merge(fallback ProviderCredentials) ProviderCredentials {
	if c.BaseURL == "" {
		c.BaseURL = fallback.BaseURL
	}
	if c.APIKey == "" {
		c.APIKey = fallback.APIKey
	}
	return c
}
