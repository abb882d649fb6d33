// Package store persists analysis runs in SQLite so results can be compared
// over time.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for runs, files and findings.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at dbPath with WAL mode enabled and migrates
// it.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id              INTEGER PRIMARY KEY,
  root            TEXT NOT NULL,
  started_at      TIMESTAMP NOT NULL,
  files           INTEGER NOT NULL,
  failed          INTEGER NOT NULL,
  with_errors     INTEGER NOT NULL,
  findings        INTEGER NOT NULL,
  graph_digest    TEXT,
  duration_ms     REAL
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  run_id          INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  path            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  hash            TEXT NOT NULL,
  has_errors      BOOLEAN DEFAULT FALSE,
  UNIQUE (run_id, path)
);

CREATE TABLE IF NOT EXISTS findings (
  id              INTEGER PRIMARY KEY,
  run_id          INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  analyzer        TEXT NOT NULL,
  kind            TEXT NOT NULL,
  severity        INTEGER NOT NULL,
  description     TEXT NOT NULL,
  file            TEXT,
  line            INTEGER,
  suggestion      TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root, started_at);
CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id);
CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
`
