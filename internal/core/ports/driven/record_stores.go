package driven

import (
	"context"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

// KnowledgeDocumentStore holds documents derived from standard updates (PostgreSQL)
type KnowledgeDocumentStore interface {
	// UpsertCurrent stores doc as the current version of its code.
	// Any other current version of the same code is superseded in the same transaction.
	UpsertCurrent(ctx context.Context, doc *domain.KnowledgeDocument) error

	// MarkSuperseded sets document (code, version) to superseded, whatever its status.
	// Returns ErrNotFound only if no document with that code and version exists.
	MarkSuperseded(ctx context.Context, code, version string) error
}

// SupplierStore updates supplier rows with provider data (PostgreSQL)
type SupplierStore interface {
	// UpdateCertification applies certificate details to a supplier.
	// Returns ErrNotFound if the supplier does not exist.
	UpdateCertification(ctx context.Context, cert *domain.Certification) error

	// UpdatePerformance applies a scorecard to a supplier.
	// Returns ErrNotFound if the supplier does not exist.
	UpdatePerformance(ctx context.Context, metric *domain.PerformanceMetric) error
}

// BenchmarkStore holds industry benchmark points keyed by metric, sector and period (PostgreSQL)
type BenchmarkStore interface {
	// Exists reports whether a point with the given key is stored
	Exists(ctx context.Context, key domain.BenchmarkKey) (bool, error)

	// Upsert inserts the point or overwrites the row with the same key
	Upsert(ctx context.Context, point *domain.BenchmarkPoint) error
}
