package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SyncAuditStore = (*AuditStore)(nil)

// AuditStore implements driven.SyncAuditStore using PostgreSQL.
// Every Append is a single independent INSERT so concurrent writers need no coordination.
type AuditStore struct {
	db *DB
}

// NewAuditStore creates a new AuditStore
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// Append writes a new audit record
func (s *AuditStore) Append(ctx context.Context, record *domain.AuditRecord) error {
	var metadataJSON []byte
	if len(record.Metadata) > 0 {
		var err error
		metadataJSON, err = json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("encode audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO sync_audit_log (id, source, mode, status, inserted, updated, deleted, error_message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		string(record.Source),
		string(record.Mode),
		string(record.Status),
		record.Inserted,
		record.Updated,
		record.Deleted,
		NullString(record.ErrorMessage),
		NullJSON(metadataJSON),
		record.Timestamp,
	)
	return err
}

// List returns records matching filter, newest first
func (s *AuditStore) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.Source != nil {
		args = append(args, string(*filter.Source))
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	args = append(args, limit)

	query := `
		SELECT id, source, mode, status, inserted, updated, deleted, error_message, metadata, created_at
		FROM sync_audit_log`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf("\n\t\tORDER BY created_at DESC\n\t\tLIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*domain.AuditRecord{}
	for rows.Next() {
		var rec domain.AuditRecord
		var errMsg sql.NullString
		var metadataJSON []byte

		if err := rows.Scan(
			&rec.ID,
			&rec.Source,
			&rec.Mode,
			&rec.Status,
			&rec.Inserted,
			&rec.Updated,
			&rec.Deleted,
			&errMsg,
			&metadataJSON,
			&rec.Timestamp,
		); err != nil {
			return nil, err
		}

		rec.ErrorMessage = errMsg.String
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata for %s: %w", rec.ID, err)
			}
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// LastSuccessful returns the newest successful run for source, nil when none
func (s *AuditStore) LastSuccessful(ctx context.Context, source domain.SourceType) (*time.Time, error) {
	query := `
		SELECT MAX(created_at)
		FROM sync_audit_log
		WHERE source = $1 AND status = 'success'
	`

	var last sql.NullTime
	if err := s.db.QueryRowContext(ctx, query, string(source)).Scan(&last); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}
