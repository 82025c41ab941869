// Package store handles SQLite persistence of report runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/complaintstat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Store wraps SQLite access for saved reports.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			rows_read INTEGER NOT NULL,
			rows_accepted INTEGER NOT NULL,
			rows_rejected INTEGER NOT NULL,
			groups_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id TEXT NOT NULL REFERENCES runs(id),
			product TEXT NOT NULL,
			year INTEGER NOT NULL,
			complaints INTEGER NOT NULL,
			companies INTEGER NOT NULL,
			max_share_pct INTEGER NOT NULL,
			PRIMARY KEY (run_id, product, year)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_rows_product ON run_rows(product);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a run and its report rows. A missing ID or timestamp is
// filled in; the stored run is returned.
func (s *Store) SaveRun(ctx context.Context, run model.Run, rows []model.ReportRow) (saved model.Run, err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	run.Groups = len(rows)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Run{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, rows_read, rows_accepted, rows_rejected, groups_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.Format(timeLayout),
		run.Source,
		run.Rows,
		run.Accepted,
		run.Rejected,
		run.Groups,
	); err != nil {
		return model.Run{}, err
	}

	if len(rows) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_rows (run_id, product, year, complaints, companies, max_share_pct)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return model.Run{}, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, r := range rows {
			if _, err = stmt.ExecContext(ctx, run.ID, r.Product, r.Year, r.Complaints, r.Companies, r.MaxSharePct); err != nil {
				return model.Run{}, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

// ListRuns returns saved runs, newest first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, rows_read, rows_accepted, rows_rejected, groups_count
		FROM runs
		ORDER BY created_at DESC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns one saved run.
func (s *Store) GetRun(ctx context.Context, id string) (model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, rows_read, rows_accepted, rows_rejected, groups_count
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrRunNotFound
	}
	return run, err
}

// RunRows returns the report rows of a run sorted by product, then year.
func (s *Store) RunRows(ctx context.Context, id string) ([]model.ReportRow, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT product, year, complaints, companies, max_share_pct
		FROM run_rows
		WHERE run_id = ?
		ORDER BY product COLLATE BINARY ASC, year ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := []model.ReportRow{}
	for rows.Next() {
		var r model.ReportRow
		if err := rows.Scan(&r.Product, &r.Year, &r.Complaints, &r.Companies, &r.MaxSharePct); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (model.Run, error) {
	var run model.Run
	var createdAt string
	if err := sc.Scan(&run.ID, &createdAt, &run.Source, &run.Rows, &run.Accepted, &run.Rejected, &run.Groups); err != nil {
		return model.Run{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Run{}, err
	}
	run.CreatedAt = parsed
	return run, nil
}
