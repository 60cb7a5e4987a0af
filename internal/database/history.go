package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pdftagdiff/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "pdftagdiff.db"

// timestampLayout is the fixed-width UTC layout of started_at, so that
// ordering the column as text orders the runs by time.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by GetRun when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores comparison runs in SQLite.
// It is safe for concurrent use; writes are serialized by a single
// connection.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the directory dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; batch mode shares this handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per comparison of a document pair
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		started_at TEXT NOT NULL,
		doc1 TEXT NOT NULL,
		doc2 TEXT NOT NULL,
		doc1_hash TEXT,
		doc2_hash TEXT,
		tags TEXT NOT NULL,
		run_dir TEXT,
		unique1 INTEGER DEFAULT 0,
		unique2 INTEGER DEFAULT 0,
		common INTEGER DEFAULT 0,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_doc1 ON runs(doc1);
	CREATE INDEX IF NOT EXISTS idx_runs_doc2 ON runs(doc2);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is the summary of a stored run.
type RunRecord struct {
	// ID is the database row ID.
	ID int64 `json:"id"`

	// RunID is the UUID of the run.
	RunID string `json:"run_id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Doc1 and Doc2 are the compared document paths.
	Doc1 string `json:"doc1"`
	Doc2 string `json:"doc2"`

	// Doc1Hash and Doc2Hash are the SHA3-256 fingerprints of the documents
	// at the time of the run.
	Doc1Hash string `json:"doc1_hash,omitempty"`
	Doc2Hash string `json:"doc2_hash,omitempty"`

	// Tags are the tags the run scanned for.
	Tags []string `json:"tags"`

	// RunDir is the directory holding the run's artifacts.
	RunDir string `json:"run_dir"`

	// Unique1, Unique2 and Common are the partition sizes.
	Unique1 int `json:"unique1"`
	Unique2 int `json:"unique2"`
	Common  int `json:"common"`
}

// SaveRun stores a finished run. Saving the same run ID twice replaces the
// earlier row.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) error {
	if run == nil {
		return errors.New("run is nil")
	}

	snapshot := *run
	if snapshot.Error != nil && snapshot.ErrorMessage == "" {
		snapshot.ErrorMessage = snapshot.Error.Error()
	}

	resultJSON, err := json.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}
	tagsJSON, err := json.Marshal(run.Tags)
	if err != nil {
		return fmt.Errorf("failed to serialize tags: %w", err)
	}

	var summary model.Summary
	if run.Comparison != nil {
		summary = run.Comparison.Summary()
	}

	query := `
	INSERT INTO runs (run_id, started_at, doc1, doc2, doc1_hash, doc2_hash, tags, run_dir, unique1, unique2, common, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		doc1_hash = excluded.doc1_hash,
		doc2_hash = excluded.doc2_hash,
		run_dir = excluded.run_dir,
		unique1 = excluded.unique1,
		unique2 = excluded.unique2,
		common = excluded.common,
		result_json = excluded.result_json
	`

	_, err = hdb.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt.UTC().Format(timestampLayout),
		absPath(run.DocumentA.Path),
		absPath(run.DocumentB.Path),
		run.DocumentA.Hash,
		run.DocumentB.Hash,
		string(tagsJSON),
		run.RunDir,
		summary.UniqueA,
		summary.UniqueB,
		summary.Common,
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	return hdb.listRuns(ctx, "", nil, limit)
}

// ListRunsForDocument returns the runs that compared the document at path
// on either side, newest first. Relative paths are resolved against the
// working directory, as they are when a run is saved.
func (hdb *HistoryDB) ListRunsForDocument(ctx context.Context, path string, limit int) ([]RunRecord, error) {
	path = absPath(path)
	return hdb.listRuns(ctx, "WHERE doc1 = ? OR doc2 = ?", []any{path, path}, limit)
}

// absPath returns the absolute form of path, or path cleaned when the
// working directory is unknown.
func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func (hdb *HistoryDB) listRuns(ctx context.Context, where string, args []any, limit int) ([]RunRecord, error) {
	var sb strings.Builder
	sb.WriteString(`
	SELECT id, run_id, started_at, doc1, doc2, doc1_hash, doc2_hash, tags, run_dir, unique1, unique2, common
	FROM runs
	`)
	sb.WriteString(where)
	sb.WriteString("\n\tORDER BY started_at DESC, id DESC")
	if limit > 0 {
		sb.WriteString("\n\tLIMIT ?")
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// GetRun returns the summary and the full stored run with the given ID.
// It returns ErrRunNotFound when no such run exists.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*RunRecord, *model.Run, error) {
	query := `
	SELECT id, run_id, started_at, doc1, doc2, doc1_hash, doc2_hash, tags, run_dir, unique1, unique2, common, result_json
	FROM runs
	WHERE run_id = ?
	`

	var resultJSON string
	rec, err := scanRecord(hdb.db.QueryRowContext(ctx, query, runID), &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, nil, err
	}

	var run model.Run
	if err := json.Unmarshal([]byte(resultJSON), &run); err != nil {
		return nil, nil, fmt.Errorf("failed to parse run: %w", err)
	}

	return rec, &run, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads the summary columns, followed by extra destinations.
func scanRecord(s scanner, extra ...any) (*RunRecord, error) {
	var rec RunRecord
	var startedAt, tagsJSON string
	var doc1Hash, doc2Hash, runDir sql.NullString

	dest := []any{
		&rec.ID, &rec.RunID, &startedAt, &rec.Doc1, &rec.Doc2,
		&doc1Hash, &doc2Hash, &tagsJSON, &runDir,
		&rec.Unique1, &rec.Unique2, &rec.Common,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.StartedAt = parseTimestamp(startedAt)
	rec.Doc1Hash = doc1Hash.String
	rec.Doc2Hash = doc2Hash.String
	rec.RunDir = runDir.String
	if err := json.Unmarshal([]byte(tagsJSON), &rec.Tags); err != nil {
		rec.Tags = nil
	}

	return &rec, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format written by SaveRun (timestampLayout)
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
