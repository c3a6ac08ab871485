// Package metrics records sync telemetry as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SyncMetrics = (*SyncMetrics)(nil)

const namespace = "datasync"

// SyncMetrics holds the collectors for orchestrated sync runs.
type SyncMetrics struct {
	runs          *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	records       *prometheus.CounterVec
	retries       *prometheus.CounterVec
	auditFailures *prometheus.CounterVec
	lastSuccess   *prometheus.GaugeVec
}

// NewSyncMetrics creates the collectors and registers them with reg.
// A nil reg returns nil, which is a valid no-op recorder.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &SyncMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Orchestrated sync runs by source, mode, status and failure kind.",
		}, []string{"source", "mode", "status", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of orchestrated sync runs in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"source", "mode"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_records_total",
			Help:      "Records reconciled by sync runs, by operation.",
		}, []string{"source", "op"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_retries_total",
			Help:      "Sync attempts that failed and were retried.",
		}, []string{"source"}),
		auditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_audit_failures_total",
			Help:      "Audit records that could not be written.",
		}, []string{"source"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful sync per source.",
		}, []string{"source"}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.duration, m.records, m.retries, m.auditFailures, m.lastSuccess} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRun records a finished run.
func (m *SyncMetrics) ObserveRun(source domain.SourceType, mode domain.SyncMode, outcome *domain.SyncOutcome, elapsed time.Duration) {
	if m == nil || outcome == nil {
		return
	}
	src := string(source)

	m.runs.WithLabelValues(src, string(mode), string(outcome.Status), string(outcome.Kind)).Inc()
	m.duration.WithLabelValues(src, string(mode)).Observe(elapsed.Seconds())
	m.records.WithLabelValues(src, "inserted").Add(float64(outcome.Inserted))
	m.records.WithLabelValues(src, "updated").Add(float64(outcome.Updated))
	m.records.WithLabelValues(src, "deleted").Add(float64(outcome.Deleted))

	if outcome.Status == domain.SyncStatusSuccess {
		m.lastSuccess.WithLabelValues(src).SetToCurrentTime()
	}
}

// ObserveRetry records a failed attempt that will be retried.
func (m *SyncMetrics) ObserveRetry(source domain.SourceType) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(string(source)).Inc()
}

// ObserveAuditFailure records a dropped audit write.
func (m *SyncMetrics) ObserveAuditFailure(source domain.SourceType) {
	if m == nil {
		return
	}
	m.auditFailures.WithLabelValues(string(source)).Inc()
}
