package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driving"
)

var _ driving.SourceAdapter = (*CertificationAdapter)(nil)

// CertificationAdapter syncs supplier certificates and performance scorecards.
type CertificationAdapter struct {
	providerAdapter
	suppliers   driven.SupplierStore
	supplierIDs []string
}

// CertificationAdapterConfig holds dependencies for CertificationAdapter.
type CertificationAdapterConfig struct {
	ProviderAdapterConfig
	Suppliers   driven.SupplierStore
	SupplierIDs []string // Optional: limit orchestrated runs to these suppliers
}

// NewCertificationAdapter creates a certification adapter. Missing credentials fall back to
// CERTIFICATION_API_BASE_URL and CERTIFICATION_API_KEY.
func NewCertificationAdapter(cfg CertificationAdapterConfig) *CertificationAdapter {
	return &CertificationAdapter{
		providerAdapter: newProviderAdapter(domain.SourceTypeCertification, CertificationEnvPrefix, cfg.ProviderAdapterConfig),
		suppliers:       cfg.Suppliers,
		supplierIDs:     cfg.SupplierIDs,
	}
}

// FetchCertifications pulls certificates, optionally limited to supplierIDs.
func (a *CertificationAdapter) FetchCertifications(ctx context.Context, supplierIDs []string) ([]domain.Certification, error) {
	if !a.IsConfigured() {
		return nil, a.notConfigured()
	}
	certs, err := a.fetchers.Suppliers(a.creds).FetchCertifications(ctx, supplierIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch certifications: %w", err)
	}
	return certs, nil
}

// FetchPerformance pulls scorecards, optionally limited to supplierIDs.
func (a *CertificationAdapter) FetchPerformance(ctx context.Context, supplierIDs []string) ([]domain.PerformanceMetric, error) {
	if !a.IsConfigured() {
		return nil, a.notConfigured()
	}
	metrics, err := a.fetchers.Suppliers(a.creds).FetchPerformance(ctx, supplierIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch performance metrics: %w", err)
	}
	return metrics, nil
}

// SyncCertifications updates suppliers by id, continuing past failures.
func (a *CertificationAdapter) SyncCertifications(ctx context.Context, certs []domain.Certification) *domain.SyncOutcome {
	tally := domain.NewBatchTally(len(certs))
	for i := range certs {
		c := &certs[i]
		if err := a.suppliers.UpdateCertification(ctx, c); err != nil {
			tally.Fail(fmt.Sprintf("failed to update certification for %s: %v", supplierLabel(c.SupplierName, c.SupplierID), err))
			continue
		}
		tally.Updated++
	}
	return tally.Outcome("totalCertifications")
}

// SyncPerformance updates supplier scorecards by id, continuing past failures.
func (a *CertificationAdapter) SyncPerformance(ctx context.Context, metrics []domain.PerformanceMetric) *domain.SyncOutcome {
	tally := domain.NewBatchTally(len(metrics))
	for i := range metrics {
		m := &metrics[i]
		if err := a.suppliers.UpdatePerformance(ctx, m); err != nil {
			tally.Fail(fmt.Sprintf("failed to update metrics for %s: %v", supplierLabel(m.SupplierName, m.SupplierID), err))
			continue
		}
		tally.Updated++
	}
	return tally.Outcome("totalMetrics")
}

// PerformCertificationSync fetches and reconciles certificates only.
func (a *CertificationAdapter) PerformCertificationSync(ctx context.Context, supplierIDs []string) *domain.SyncOutcome {
	if !a.IsConfigured() {
		return a.notConfiguredOutcome()
	}
	certs, fromCache, err := a.fetchCertifications(ctx, supplierIDs)
	if err != nil {
		return domain.NewFailedOutcome(domain.FailureTransient, err.Error())
	}
	if len(certs) == 0 {
		return markCached(nothingToSync("No certifications to sync"), fromCache)
	}
	return markCached(a.SyncCertifications(ctx, certs), fromCache)
}

// PerformPerformanceSync fetches and reconciles scorecards only.
func (a *CertificationAdapter) PerformPerformanceSync(ctx context.Context, supplierIDs []string) *domain.SyncOutcome {
	if !a.IsConfigured() {
		return a.notConfiguredOutcome()
	}
	metrics, fromCache, err := a.fetchPerformance(ctx, supplierIDs)
	if err != nil {
		return domain.NewFailedOutcome(domain.FailureTransient, err.Error())
	}
	if len(metrics) == 0 {
		return markCached(nothingToSync("No performance metrics to sync"), fromCache)
	}
	return markCached(a.SyncPerformance(ctx, metrics), fromCache)
}

// PerformCombinedSync fetches certificates and scorecards concurrently, reconciles each
// and merges the outcomes. A kind whose fetch failed contributes nothing; its error is
// kept in metadata.fetchErrors. When both fetches fail the run fails.
func (a *CertificationAdapter) PerformCombinedSync(ctx context.Context, supplierIDs []string) *domain.SyncOutcome {
	if !a.IsConfigured() {
		return a.notConfiguredOutcome()
	}

	var (
		certs                  []domain.Certification
		metrics                []domain.PerformanceMetric
		certErr, perfErr       error
		certCached, perfCached bool
	)

	// Fail-independent: neither goroutine returns an error, so one failing never cancels the other
	var g errgroup.Group
	g.Go(func() error {
		certs, certCached, certErr = a.fetchCertifications(ctx, supplierIDs)
		return nil
	})
	g.Go(func() error {
		metrics, perfCached, perfErr = a.fetchPerformance(ctx, supplierIDs)
		return nil
	})
	_ = g.Wait()

	var fetchErrors []string
	if certErr != nil {
		a.logger.Warn("certification fetch failed", "error", certErr)
		fetchErrors = append(fetchErrors, certErr.Error())
	}
	if perfErr != nil {
		a.logger.Warn("performance fetch failed", "error", perfErr)
		fetchErrors = append(fetchErrors, perfErr.Error())
	}
	if certErr != nil && perfErr != nil {
		return domain.NewFailedOutcome(domain.FailureTransient, strings.Join(fetchErrors, "; ")).
			WithMetadata("fetchErrors", fetchErrors)
	}

	var parts []*domain.SyncOutcome
	if certErr == nil && len(certs) > 0 {
		parts = append(parts, a.SyncCertifications(ctx, certs))
	}
	if perfErr == nil && len(metrics) > 0 {
		parts = append(parts, a.SyncPerformance(ctx, metrics))
	}

	merged := domain.MergeOutcomes(parts...)
	if len(parts) == 0 {
		merged.WithMetadata("message", "No supplier data to sync")
	}
	if len(fetchErrors) > 0 {
		merged.WithMetadata("fetchErrors", fetchErrors)
	}
	return markCached(merged, certCached || perfCached)
}

// PerformSync runs the combined sync for the configured suppliers.
func (a *CertificationAdapter) PerformSync(ctx context.Context, req domain.SyncRequest) *domain.SyncOutcome {
	return a.PerformCombinedSync(ctx, a.supplierIDs)
}

func (a *CertificationAdapter) fetchCertifications(ctx context.Context, supplierIDs []string) ([]domain.Certification, bool, error) {
	return fetchCached(ctx, &a.providerAdapter, cacheKind("certifications", supplierIDs),
		func(ctx context.Context) ([]domain.Certification, error) {
			return a.FetchCertifications(ctx, supplierIDs)
		})
}

func (a *CertificationAdapter) fetchPerformance(ctx context.Context, supplierIDs []string) ([]domain.PerformanceMetric, bool, error) {
	return fetchCached(ctx, &a.providerAdapter, cacheKind("performance", supplierIDs),
		func(ctx context.Context) ([]domain.PerformanceMetric, error) {
			return a.FetchPerformance(ctx, supplierIDs)
		})
}

func cacheKind(kind string, supplierIDs []string) string {
	if len(supplierIDs) == 0 {
		return kind
	}
	return kind + ":" + strings.Join(supplierIDs, ",")
}

func supplierLabel(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
