package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

// SyncAuditStore persists the append-only sync audit log (PostgreSQL)
type SyncAuditStore interface {
	// Append writes a new audit record. Records are never updated or deleted.
	Append(ctx context.Context, record *domain.AuditRecord) error

	// List returns records matching the filter, newest first
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error)

	// LastSuccessful returns the timestamp of the most recent successful run for a source.
	// Returns nil when the source never succeeded.
	LastSuccessful(ctx context.Context, source domain.SourceType) (*time.Time, error)
}
