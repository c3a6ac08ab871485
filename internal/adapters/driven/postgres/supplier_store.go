package postgres

import (
	"context"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SupplierStore = (*SupplierStore)(nil)

// SupplierStore implements driven.SupplierStore using PostgreSQL.
// Suppliers are owned elsewhere; this store only updates provider-sourced columns.
type SupplierStore struct {
	db *DB
}

// NewSupplierStore creates a new SupplierStore
func NewSupplierStore(db *DB) *SupplierStore {
	return &SupplierStore{db: db}
}

// UpdateCertification applies certificate details to a supplier
func (s *SupplierStore) UpdateCertification(ctx context.Context, cert *domain.Certification) error {
	query := `
		UPDATE suppliers SET
			cert_type = $2,
			cert_body = $3,
			cert_number = $4,
			cert_issue_date = $5,
			cert_expiry_date = $6,
			cert_status = $7,
			last_audit_date = $8,
			last_audit_result = $9,
			next_audit_date = $10,
			updated_at = now()
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		cert.SupplierID,
		cert.CertType,
		cert.CertBody,
		cert.CertNumber,
		NullString(cert.IssueDate),
		NullString(cert.ExpiryDate),
		string(cert.Status),
		NullString(cert.AuditDate),
		NullString(string(cert.AuditResult)),
		NullString(cert.NextAuditDate),
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdatePerformance applies a scorecard to a supplier
func (s *SupplierStore) UpdatePerformance(ctx context.Context, metric *domain.PerformanceMetric) error {
	query := `
		UPDATE suppliers SET
			total_issues = $2,
			critical_issues = $3,
			avg_response_days = $4,
			on_time_rate = $5,
			quality_score = $6,
			performance_as_of = $7,
			updated_at = now()
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		metric.SupplierID,
		metric.TotalIssues,
		metric.CriticalIssues,
		metric.AvgResponseDays,
		metric.OnTimeRate,
		metric.QualityScore,
		NullString(metric.AsOf),
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}
