package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/titanicprep/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "titanicprep.db"

// Store provides SQLite-based storage for reference ages, imputation audits
// and run summaries.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run scrape first or enable creation)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Reference ages hold the scraped encyclopedia rows.
	-- position is the row number within the listing page of source_age.
	CREATE TABLE IF NOT EXISTS reference_ages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_age INTEGER NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		age TEXT NOT NULL,
		extra TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_age, position)
	);

	CREATE INDEX IF NOT EXISTS idx_reference_name ON reference_ages(name);

	-- Imputations audit every age filled from a reference match
	CREATE TABLE IF NOT EXISTS imputations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset TEXT NOT NULL,
		passenger_id TEXT NOT NULL,
		name TEXT NOT NULL,
		matched_name TEXT NOT NULL,
		score INTEGER NOT NULL,
		raw_age TEXT NOT NULL,
		age TEXT NOT NULL,
		tie INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_imputations_dataset ON imputations(dataset);

	-- Run reports store complete run summaries as JSON
	CREATE TABLE IF NOT EXISTS run_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		command TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_command ON run_reports(command);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReferences stores scraped records. Rows are keyed by listing page and
// position, so a later scrape of the same page replaces its rows; rows past
// the new end of a page are removed.
func (s *Store) SaveReferences(ctx context.Context, records []model.ReferenceRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
	INSERT INTO reference_ages (source_age, position, name, age, extra)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(source_age, position) DO UPDATE SET
		name = excluded.name,
		age = excluded.age,
		extra = excluded.extra,
		timestamp = CURRENT_TIMESTAMP
	`

	positions := make(map[int]int)
	for _, rec := range records {
		extra, err := json.Marshal(rec.Extra)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize extra columns: %w", err)
		}
		pos := positions[rec.SourceAge]
		positions[rec.SourceAge] = pos + 1

		if _, err := tx.ExecContext(ctx, upsert, rec.SourceAge, pos, rec.Name, rec.Age, string(extra)); err != nil {
			return 0, fmt.Errorf("failed to save reference record: %w", err)
		}
	}

	for age, n := range positions {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM reference_ages WHERE source_age = ? AND position >= ?", age, n); err != nil {
			return 0, fmt.Errorf("failed to prune reference records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reference records: %w", err)
	}
	return len(records), nil
}

// LoadReferences returns every stored reference record in listing order.
func (s *Store) LoadReferences(ctx context.Context) ([]model.ReferenceRecord, error) {
	query := `
	SELECT source_age, name, age, extra
	FROM reference_ages
	ORDER BY source_age, position
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reference records: %w", err)
	}
	defer rows.Close()

	records := make([]model.ReferenceRecord, 0)
	for rows.Next() {
		var rec model.ReferenceRecord
		var extra sql.NullString
		if err := rows.Scan(&rec.SourceAge, &rec.Name, &rec.Age, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan reference record: %w", err)
		}
		if extra.Valid && extra.String != "" && extra.String != "null" {
			if err := json.Unmarshal([]byte(extra.String), &rec.Extra); err != nil {
				return nil, fmt.Errorf("failed to parse extra columns: %w", err)
			}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SaveImputations stores the audit entries of an imputation run.
func (s *Store) SaveImputations(ctx context.Context, matches []model.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO imputations (dataset, passenger_id, name, matched_name, score, raw_age, age, tie)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, m := range matches {
		_, err := tx.ExecContext(ctx, query,
			m.Dataset,
			m.PassengerID,
			m.Name,
			m.MatchedName,
			m.Score,
			m.RawAge,
			m.Age,
			m.Tie,
		)
		if err != nil {
			return fmt.Errorf("failed to save imputation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit imputations: %w", err)
	}
	return nil
}

// ListImputations returns the stored audit entries, optionally filtered by
// dataset, oldest first.
func (s *Store) ListImputations(ctx context.Context, dataset string) ([]model.Match, error) {
	query := `
	SELECT dataset, passenger_id, name, matched_name, score, raw_age, age, tie
	FROM imputations
	WHERE 1=1
	`
	args := make([]any, 0)
	if dataset != "" {
		query += " AND dataset = ?"
		args = append(args, dataset)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query imputations: %w", err)
	}
	defer rows.Close()

	var results []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.Dataset, &m.PassengerID, &m.Name, &m.MatchedName,
			&m.Score, &m.RawAge, &m.Age, &m.Tie); err != nil {
			return nil, fmt.Errorf("failed to scan imputation: %w", err)
		}
		results = append(results, m)
	}

	return results, rows.Err()
}

// SaveRunSummary saves a complete run summary as JSON.
func (s *Store) SaveRunSummary(ctx context.Context, summary *model.RunSummary) (int64, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run summary: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO run_reports (command, summary_json) VALUES (?, ?)",
		summary.Command, string(data))
	if err != nil {
		return 0, fmt.Errorf("failed to save run summary: %w", err)
	}
	return result.LastInsertId()
}

// GetLatestRunSummary retrieves the most recent summary of a command.
// It returns nil without error when the command never ran.
func (s *Store) GetLatestRunSummary(ctx context.Context, command string) (*model.RunSummary, error) {
	query := `
	SELECT summary_json FROM run_reports
	WHERE command = ?
	ORDER BY id DESC
	LIMIT 1
	`

	var data string
	err := s.db.QueryRowContext(ctx, query, command).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run summary: %w", err)
	}

	var summary model.RunSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse run summary: %w", err)
	}
	return &summary, nil
}

// RunMetadata contains summary information about a stored run.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Command is the sub-command that ran.
	Command string

	// Timestamp is when the run was stored.
	Timestamp time.Time
}

// ListRuns returns the stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, command, timestamp FROM run_reports ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string
		if err := rows.Scan(&meta.ID, &meta.Command, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
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
