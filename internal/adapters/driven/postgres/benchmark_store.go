package postgres

import (
	"context"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BenchmarkStore = (*BenchmarkStore)(nil)

// BenchmarkStore implements driven.BenchmarkStore using PostgreSQL
type BenchmarkStore struct {
	db *DB
}

// NewBenchmarkStore creates a new BenchmarkStore
func NewBenchmarkStore(db *DB) *BenchmarkStore {
	return &BenchmarkStore{db: db}
}

// Exists reports whether a row with the natural key is stored
func (s *BenchmarkStore) Exists(ctx context.Context, key domain.BenchmarkKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM industry_benchmarks
			WHERE metric_name = $1 AND industry_sector = $2 AND period_start = $3 AND period_end = $4
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query,
		key.MetricName,
		key.Sector,
		key.PeriodStart,
		key.PeriodEnd,
	).Scan(&exists)
	return exists, err
}

// Upsert inserts the point or overwrites the row with the same natural key
func (s *BenchmarkStore) Upsert(ctx context.Context, point *domain.BenchmarkPoint) error {
	query := `
		INSERT INTO industry_benchmarks (
			metric_name, metric_category, industry_sector, benchmark_value,
			percentile_25, percentile_50, percentile_75, percentile_90,
			sample_size, period_start, period_end, data_source, last_updated, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), TRUE)
		ON CONFLICT (metric_name, industry_sector, period_start, period_end) DO UPDATE SET
			metric_category = EXCLUDED.metric_category,
			benchmark_value = EXCLUDED.benchmark_value,
			percentile_25 = EXCLUDED.percentile_25,
			percentile_50 = EXCLUDED.percentile_50,
			percentile_75 = EXCLUDED.percentile_75,
			percentile_90 = EXCLUDED.percentile_90,
			sample_size = EXCLUDED.sample_size,
			data_source = EXCLUDED.data_source,
			last_updated = EXCLUDED.last_updated,
			active = TRUE
	`

	_, err := s.db.ExecContext(ctx, query,
		point.MetricName,
		point.Category,
		point.Sector,
		point.Value,
		point.P25,
		point.P50,
		point.P75,
		point.P90,
		point.SampleSize,
		point.PeriodStart,
		point.PeriodEnd,
		NullString(point.Source),
	)
	return err
}
