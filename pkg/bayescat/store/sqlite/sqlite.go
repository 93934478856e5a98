package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/bayescat/pkg/bayescat/dataset"
	"github.com/cognicore/bayescat/pkg/bayescat/internalerr"
	"github.com/cognicore/bayescat/pkg/bayescat/store"
)

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS datasets (
	name TEXT PRIMARY KEY,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	dataset TEXT NOT NULL,
	seq INTEGER NOT NULL,
	input TEXT NOT NULL,
	class TEXT NOT NULL,
	subclass TEXT NOT NULL,
	PRIMARY KEY(dataset, seq),
	FOREIGN KEY(dataset) REFERENCES datasets(name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_records_class ON records(dataset, class);

CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	dataset TEXT NOT NULL,
	created_at TEXT NOT NULL,
	total INTEGER NOT NULL,
	class_hits INTEGER NOT NULL,
	subclass_hits INTEGER NOT NULL,
	elapsed_ns INTEGER NOT NULL,
	misses TEXT
);

CREATE INDEX IF NOT EXISTS idx_reports_dataset ON reports(dataset, created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReplaceDataset stores records under name in one transaction, replacing
// any previous content.
func (s *sqliteStore) ReplaceDataset(ctx context.Context, name string, records []dataset.Record) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: dataset name is required", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upsert = `
INSERT INTO datasets (name, updated_at) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET updated_at=excluded.updated_at;
`
	if _, err := tx.ExecContext(ctx, upsert, name, time.Now().UTC().Format(timeLayout)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE dataset = ?`, name); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (dataset, seq, input, class, subclass) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, name, i, r.Input, r.ClassName, r.SubClassName); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Records returns the records of a dataset in insertion order.
func (s *sqliteStore) Records(ctx context.Context, name string) ([]dataset.Record, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM datasets WHERE name = ?`, name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %q: %w", name, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT input, class, subclass FROM records WHERE dataset = ? ORDER BY seq`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dataset.Record
	for rows.Next() {
		var r dataset.Record
		if err := rows.Scan(&r.Input, &r.ClassName, &r.SubClassName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Datasets lists stored datasets sorted by name.
func (s *sqliteStore) Datasets(ctx context.Context) ([]store.DatasetInfo, error) {
	const query = `
SELECT d.name, d.updated_at, COUNT(r.seq), COUNT(DISTINCT r.class)
FROM datasets d
LEFT JOIN records r ON r.dataset = d.name
GROUP BY d.name, d.updated_at
ORDER BY d.name;
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.DatasetInfo
	for rows.Next() {
		var (
			info    store.DatasetInfo
			updated string
		)
		if err := rows.Scan(&info.Name, &updated, &info.Records, &info.Classes); err != nil {
			return nil, err
		}
		info.UpdatedAt, _ = time.Parse(timeLayout, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteDataset removes a dataset and its records. Reports are kept.
func (s *sqliteStore) DeleteDataset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("dataset %q: %w", name, internalerr.ErrNotFound)
	}
	return nil
}

// SaveReport inserts or replaces a report by ID.
func (s *sqliteStore) SaveReport(ctx context.Context, r store.Report) error {
	if r.ID == "" {
		return fmt.Errorf("%w: report ID is required", internalerr.ErrInvalidInput)
	}

	const stmt = `
INSERT INTO reports (id, dataset, created_at, total, class_hits, subclass_hits, elapsed_ns, misses)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	dataset=excluded.dataset,
	created_at=excluded.created_at,
	total=excluded.total,
	class_hits=excluded.class_hits,
	subclass_hits=excluded.subclass_hits,
	elapsed_ns=excluded.elapsed_ns,
	misses=excluded.misses;
`
	_, err := s.db.ExecContext(ctx, stmt,
		r.ID,
		r.Dataset,
		r.CreatedAt.UTC().Format(timeLayout),
		r.Total,
		r.ClassHits,
		r.SubClassHits,
		int64(r.Elapsed),
		r.MissesJSON,
	)
	return err
}

const reportColumns = `id, dataset, created_at, total, class_hits, subclass_hits, elapsed_ns, COALESCE(misses, '')`

// GetReport returns a report by ID.
func (s *sqliteStore) GetReport(ctx context.Context, id string) (store.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Report{}, fmt.Errorf("report %q: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// Reports returns up to k reports, newest first. An empty datasetName
// matches every dataset.
func (s *sqliteStore) Reports(ctx context.Context, datasetName string, k int) ([]store.Report, error) {
	if k <= 0 {
		k = 20
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	var args []interface{}
	if datasetName != "" {
		query += ` WHERE dataset = ?`
		args = append(args, datasetName)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, k)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(sc scanner) (store.Report, error) {
	var (
		r       store.Report
		created string
		elapsed int64
	)
	if err := sc.Scan(&r.ID, &r.Dataset, &created, &r.Total, &r.ClassHits, &r.SubClassHits, &elapsed, &r.MissesJSON); err != nil {
		return store.Report{}, err
	}
	r.Elapsed = time.Duration(elapsed)
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return store.Report{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	r.CreatedAt = t
	return r, nil
}
