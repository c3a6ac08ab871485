package postgres

import (
	"context"
	"database/sql"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.KnowledgeDocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.KnowledgeDocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// UpsertCurrent stores doc as the current version of its code, superseding any
// other current version in the same transaction.
func (s *DocumentStore) UpsertCurrent(ctx context.Context, doc *domain.KnowledgeDocument) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		supersede := `
			UPDATE knowledge_documents
			SET status = 'superseded', updated_at = $3
			WHERE code = $1 AND version <> $2 AND status = 'current'
		`
		if _, err := tx.ExecContext(ctx, supersede, doc.Code, doc.Version, doc.UpdatedAt); err != nil {
			return err
		}

		upsert := `
			INSERT INTO knowledge_documents (code, version, name, full_text, section, effective_date, document_type, status, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'current', $8)
			ON CONFLICT (code, version) DO UPDATE SET
				name = EXCLUDED.name,
				full_text = EXCLUDED.full_text,
				section = EXCLUDED.section,
				effective_date = EXCLUDED.effective_date,
				document_type = EXCLUDED.document_type,
				status = 'current',
				updated_at = EXCLUDED.updated_at
		`
		_, err := tx.ExecContext(ctx, upsert,
			doc.Code,
			doc.Version,
			doc.Name,
			doc.FullText,
			doc.Section,
			NullString(doc.EffectiveDate),
			doc.DocumentType,
			doc.UpdatedAt,
		)
		return err
	})
}

// MarkSuperseded sets the (code, version) row to superseded. A row that is
// already superseded still matches, so replaying a batch succeeds.
func (s *DocumentStore) MarkSuperseded(ctx context.Context, code, version string) error {
	query := `
		UPDATE knowledge_documents
		SET status = 'superseded', updated_at = now()
		WHERE code = $1 AND version = $2
	`

	result, err := s.db.ExecContext(ctx, query, code, version)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// requireRow maps zero affected rows to ErrNotFound
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
