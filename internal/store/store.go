package store

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite persistence layer: delta-sync snapshot caches and
// recipe run history.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

const schemaDDL = `
-- Delta sync snapshot caches. One row per node per named cache; a sender
-- keeps what the peer has acknowledged, a receiver what it has applied.

CREATE TABLE IF NOT EXISTS snapshots (
  cache           TEXT NOT NULL,
  node_id         TEXT NOT NULL,
  kind            TEXT NOT NULL,
  record          BLOB NOT NULL,
  checksum        INTEGER NOT NULL,
  updated_at      TIMESTAMP,
  PRIMARY KEY (cache, node_id)
);

CREATE TABLE IF NOT EXISTS snapshot_roots (
  cache           TEXT NOT NULL,
  path            TEXT NOT NULL,
  node_id         TEXT NOT NULL,
  PRIMARY KEY (cache, path)
);

-- Run history

CREATE TABLE IF NOT EXISTS runs (
  id              INTEGER PRIMARY KEY,
  started_at      TIMESTAMP NOT NULL,
  finished_at     TIMESTAMP,
  recipes         TEXT NOT NULL,
  cycles          INTEGER NOT NULL,
  converged       BOOLEAN NOT NULL,
  state           TEXT NOT NULL,
  warning         TEXT
);

CREATE TABLE IF NOT EXISTS run_files (
  id              INTEGER PRIMARY KEY,
  run_id          INTEGER NOT NULL REFERENCES runs(id),
  path            TEXT NOT NULL,
  change          TEXT NOT NULL,
  recipes         TEXT,
  before_hash     TEXT,
  after_hash      TEXT,
  error           TEXT
);

-- Indexes

CREATE INDEX IF NOT EXISTS idx_snapshots_cache ON snapshots(cache);
CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
CREATE INDEX IF NOT EXISTS idx_run_files_path ON run_files(path);
`

// DeleteCache transactionally removes every snapshot and root of a cache.
func (s *Store) DeleteCache(cache string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM snapshots WHERE cache = ?",
		"DELETE FROM snapshot_roots WHERE cache = ?",
	} {
		if _, err := tx.Exec(q, cache); err != nil {
			return errors.Wrap(err, "delete cache")
		}
	}
	return tx.Commit()
}

// Caches lists the names of caches holding at least one snapshot.
func (s *Store) Caches() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT cache FROM snapshots ORDER BY cache")
	if err != nil {
		return nil, errors.Wrap(err, "list caches")
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, errors.Wrap(err, "scan cache")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
