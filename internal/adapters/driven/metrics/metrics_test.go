package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

func TestNewSyncMetrics_NilRegistererIsNoop(t *testing.T) {
	m, err := NewSyncMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.NotPanics(t, func() {
		m.ObserveRun(domain.SourceTypeStandards, domain.SyncModeFull, domain.NewSuccessOutcome(), time.Second)
		m.ObserveRetry(domain.SourceTypeStandards)
		m.ObserveAuditFailure(domain.SourceTypeStandards)
	})
}

func TestNewSyncMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewSyncMetrics(reg)
	require.NoError(t, err)

	_, err = NewSyncMetrics(reg)
	assert.Error(t, err)
}

func TestSyncMetrics_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewSyncMetrics(reg)
	require.NoError(t, err)

	ok := domain.NewSuccessOutcome()
	ok.Inserted = 3
	ok.Updated = 2
	m.ObserveRun(domain.SourceTypeBenchmark, domain.SyncModeFull, ok, 2*time.Second)

	failed := domain.NewFailedOutcome(domain.FailureTransient, "timeout")
	m.ObserveRun(domain.SourceTypeBenchmark, domain.SyncModeFull, failed, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("benchmark", "full", "success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("benchmark", "full", "failed", "transient")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.records.WithLabelValues("benchmark", "inserted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues("benchmark", "updated")))
	assert.Greater(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("benchmark")), 0.0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestSyncMetrics_RetriesAndAuditFailures(t *testing.T) {
	m, err := NewSyncMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRetry(domain.SourceTypeCertification)
	m.ObserveRetry(domain.SourceTypeCertification)
	m.ObserveAuditFailure(domain.SourceTypeStandards)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.retries.WithLabelValues("certification")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFailures.WithLabelValues("standards")))
}
