package domain

import (
	"strings"
	"time"
)

// SyncStatus represents how a sync run ended
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
)

// FailureKind classifies why a sync run did not succeed
type FailureKind string

const (
	FailureNotEnabled     FailureKind = "not_enabled"
	FailureNotConfigured  FailureKind = "not_configured"
	FailureHandlerMissing FailureKind = "handler_missing"
	FailureInProgress     FailureKind = "in_progress"
	FailureTransient      FailureKind = "transient"
	FailurePartial        FailureKind = "partial"
)

// Retryable reports whether another attempt could change the result
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureNotEnabled, FailureNotConfigured, FailureHandlerMissing, FailureInProgress:
		return false
	default:
		return true
	}
}

// SyncOutcome is the result of one source run
type SyncOutcome struct {
	OK       bool           `json:"ok"`
	Status   SyncStatus     `json:"status"`
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Deleted  int            `json:"deleted"`
	Error    string         `json:"error,omitempty"`
	Kind     FailureKind    `json:"kind,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewSuccessOutcome creates an empty successful outcome
func NewSuccessOutcome() *SyncOutcome {
	return &SyncOutcome{OK: true, Status: SyncStatusSuccess}
}

// NewFailedOutcome creates a failed outcome with zero counters
func NewFailedOutcome(kind FailureKind, message string) *SyncOutcome {
	return &SyncOutcome{
		OK:     false,
		Status: SyncStatusFailed,
		Error:  message,
		Kind:   kind,
	}
}

// WithMetadata sets a metadata key and returns the outcome
func (o *SyncOutcome) WithMetadata(key string, value any) *SyncOutcome {
	if o.Metadata == nil {
		o.Metadata = make(map[string]any)
	}
	o.Metadata[key] = value
	return o
}

// Total returns the number of records the outcome touched
func (o *SyncOutcome) Total() int {
	return o.Inserted + o.Updated + o.Deleted
}

// BatchTally accumulates per-record reconciliation results
type BatchTally struct {
	Total    int
	Inserted int
	Updated  int
	Errors   []string
}

// NewBatchTally creates a tally for a batch of total records
func NewBatchTally(total int) *BatchTally {
	return &BatchTally{Total: total}
}

// Fail records a per-record failure
func (t *BatchTally) Fail(message string) {
	t.Errors = append(t.Errors, message)
}

// Outcome classifies the batch.
// totalKey names the metadata counter, e.g. "totalBenchmarks".
func (t *BatchTally) Outcome(totalKey string) *SyncOutcome {
	errCount := len(t.Errors)

	out := &SyncOutcome{
		OK:       errCount == 0,
		Inserted: t.Inserted,
		Updated:  t.Updated,
		Metadata: map[string]any{
			totalKey: t.Total,
			"errors": errCount,
		},
	}

	switch {
	case errCount == 0:
		out.Status = SyncStatusSuccess
	case errCount < t.Total:
		out.Status = SyncStatusPartial
		out.Kind = FailurePartial
	default:
		out.Status = SyncStatusFailed
		out.Kind = FailureTransient
	}

	if errCount > 0 {
		out.Error = strings.Join(t.Errors, "; ")
	}
	return out
}

// MergeOutcomes combines independently reconciled outcomes.
// failed wins over partial, partial over success; counters are summed.
func MergeOutcomes(outcomes ...*SyncOutcome) *SyncOutcome {
	merged := NewSuccessOutcome()
	var errs []string
	anyFailed, anyPartial := false, false

	for _, o := range outcomes {
		if o == nil {
			continue
		}
		merged.OK = merged.OK && o.OK
		merged.Inserted += o.Inserted
		merged.Updated += o.Updated
		merged.Deleted += o.Deleted
		if o.Error != "" {
			errs = append(errs, o.Error)
		}
		switch o.Status {
		case SyncStatusFailed:
			anyFailed = true
		case SyncStatusPartial:
			anyPartial = true
		}
	}

	switch {
	case anyFailed:
		merged.Status = SyncStatusFailed
		merged.Kind = FailureTransient
	case anyPartial:
		merged.Status = SyncStatusPartial
		merged.Kind = FailurePartial
	}
	merged.Error = strings.Join(errs, "; ")
	return merged
}

// AuditRecord is an immutable log entry for one orchestrator run
type AuditRecord struct {
	ID           string         `json:"id"`
	Source       SourceType     `json:"source"`
	Mode         SyncMode       `json:"mode"`
	Status       SyncStatus     `json:"status"`
	Inserted     int            `json:"inserted"`
	Updated      int            `json:"updated"`
	Deleted      int            `json:"deleted"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// NewAuditRecord captures an outcome for the audit log
func NewAuditRecord(source SourceType, mode SyncMode, outcome *SyncOutcome, at time.Time) *AuditRecord {
	return &AuditRecord{
		Source:       source,
		Mode:         mode,
		Status:       outcome.Status,
		Inserted:     outcome.Inserted,
		Updated:      outcome.Updated,
		Deleted:      outcome.Deleted,
		ErrorMessage: outcome.Error,
		Metadata:     outcome.Metadata,
		Timestamp:    at,
	}
}

// AuditFilter narrows an audit history query
type AuditFilter struct {
	Source *SourceType
	Status *SyncStatus
	Limit  int
}

// DefaultHistoryLimit caps history queries without an explicit limit
const DefaultHistoryLimit = 50

// SyncRequest is what a handler receives for one attempt
type SyncRequest struct {
	Source SourceType `json:"source"`
	Mode   SyncMode   `json:"mode"`
	// Since is the last successful run for incremental syncs, nil for full syncs
	Since *time.Time `json:"since,omitempty"`
}
