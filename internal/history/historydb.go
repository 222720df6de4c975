package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/avlabel/internal/model"
)

// dbFileName is the SQLite database file inside the history directory.
const dbFileName = "avlabel.db"

// DB provides SQLite-based storage for run history.
//
// Design decision: We use a single database file for all runs rather than
// one file per input directory. This keeps cross-run queries trivial and
// matches how the database is actually used: compare this run against the
// previous ones over the same sample set.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Run is one recorded labeling run.
type Run struct {
	// ID is the run's database identifier.
	ID int64

	// InputDir is the scanned report directory.
	InputDir string

	// StartedAt is when processing began.
	StartedAt time.Time

	// ElapsedMS is the run's wall-clock duration in milliseconds.
	ElapsedMS int64

	// FilesDiscovered, RowsWritten, and ErrorCount mirror the run summary.
	FilesDiscovered int
	RowsWritten     int
	ErrorCount      int
}

// Open opens or creates the history database under dir.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	dbPath := filepath.Join(dir, dbFileName)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer; history is written once per run,
	// so a single connection is all we need.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &DB{db: db, dbPath: dbPath}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Close closes the database connection.
func (h *DB) Close() error {
	return h.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (h *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input_dir TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		files_discovered INTEGER NOT NULL,
		rows_written INTEGER NOT NULL,
		error_count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_input_dir ON runs(input_dir);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		file_name TEXT NOT NULL,
		family TEXT NOT NULL DEFAULT '',
		cpu TEXT NOT NULL DEFAULT '',
		first_seen TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		md5 TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_run_rows_run_id ON run_rows(run_id);
	CREATE INDEX IF NOT EXISTS idx_run_rows_file_name ON run_rows(file_name);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun records one completed run and its table rows.
// Returns the new run's identifier.
func (h *DB) SaveRun(ctx context.Context, summary *model.RunSummary, table *model.Table) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (input_dir, started_at, elapsed_ms, files_discovered, rows_written, error_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		summary.InputDir,
		summary.StartedAt.UTC(),
		summary.Elapsed.Milliseconds(),
		summary.FilesDiscovered,
		summary.RowsWritten,
		summary.ErrorCount,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_rows (run_id, file_name, family, cpu, first_seen, size, md5)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // Statement dies with the transaction

	for _, row := range table.Rows {
		cell := func(f model.Field) string {
			v, _ := row.Value(f)
			return v
		}
		if _, err := stmt.ExecContext(ctx,
			runID,
			row.FileID,
			cell(model.FieldFamily),
			cell(model.FieldCPU),
			cell(model.FieldFirstSeen),
			cell(model.FieldSize),
			cell(model.FieldMD5),
		); err != nil {
			return 0, fmt.Errorf("failed to insert row for %s: %w", row.FileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// Runs returns recorded runs for the given input directory, most recent
// first. An empty inputDir returns all runs.
func (h *DB) Runs(ctx context.Context, inputDir string) ([]Run, error) {
	query := `SELECT id, input_dir, started_at, elapsed_ms, files_discovered, rows_written, error_count
		FROM runs`
	args := []any{}
	if inputDir != "" {
		query += " WHERE input_dir = ?"
		args = append(args, inputDir)
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.InputDir, &r.StartedAt, &r.ElapsedMS,
			&r.FilesDiscovered, &r.RowsWritten, &r.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// RowCount returns the number of stored table rows for a run.
func (h *DB) RowCount(ctx context.Context, runID int64) (int, error) {
	var count int
	err := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM run_rows WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}
