package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

// RecordRepository keeps ingested record metadata for the corpus status
// surface. Record text stays in the document store only.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS corpus_records (
	id TEXT PRIMARY KEY,
	record_type TEXT NOT NULL,
	filename TEXT,
	location TEXT,
	disaster_type TEXT,
	link TEXT,
	last_modified TIMESTAMPTZ NOT NULL,
	ingested_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_corpus_records_type ON corpus_records(record_type);
CREATE INDEX IF NOT EXISTS idx_corpus_records_ingested_at ON corpus_records(ingested_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Insert stores record metadata, reporting false for a duplicate id.
func (r *RecordRepository) Insert(ctx context.Context, record domain.Record) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO corpus_records (
	id, record_type, filename, location, disaster_type, link, last_modified, ingested_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO NOTHING
`,
		record.ID, string(record.Type), record.Filename, record.Location, record.DisasterType,
		record.Link, record.LastModified, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *RecordRepository) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT record_type, COUNT(*)
FROM corpus_records
GROUP BY record_type
`)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var recordType string
		var count int
		if err := rows.Scan(&recordType, &count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts[recordType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count rows: %w", err)
	}
	return counts, nil
}

func (r *RecordRepository) SampleRecent(ctx context.Context, limit int) ([]domain.RecordSample, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, record_type, COALESCE(filename, ''), last_modified
FROM corpus_records
ORDER BY ingested_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("sample records: %w", err)
	}
	defer rows.Close()

	samples := make([]domain.RecordSample, 0, limit)
	for rows.Next() {
		var sample domain.RecordSample
		if err := rows.Scan(&sample.ID, &sample.Type, &sample.Filename, &sample.LastModified); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}
	return samples, nil
}
