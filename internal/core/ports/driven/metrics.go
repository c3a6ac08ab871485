package driven

import (
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

// SyncMetrics records sync run telemetry (Prometheus)
type SyncMetrics interface {
	// ObserveRun records a finished orchestrator run
	ObserveRun(source domain.SourceType, mode domain.SyncMode, outcome *domain.SyncOutcome, elapsed time.Duration)

	// ObserveRetry records a retry attempt that did not succeed
	ObserveRetry(source domain.SourceType)

	// ObserveAuditFailure records an audit write that was dropped
	ObserveAuditFailure(source domain.SourceType)
}
