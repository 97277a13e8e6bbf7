// Package store archives validation reports in SQLite so operators can
// audit what was checked, when, and with which findings.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go driver
)

const schemaVersion = 1

// Pool tuning. SQLite holds a single writer, so the pool mostly serves
// concurrent readers.
const (
	busyTimeout  = 5 * time.Second
	maxOpenConns = 25
	connLifetime = 1 * time.Hour
)

// connPragmas apply per connection and therefore ride in the DSN, not in
// a one-off Exec that would only reach the first pooled connection.
var connPragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
}

func archiveDSN(dbPath string) string {
	pragmas := append([]string{fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds())}, connPragmas...)
	return "file:" + dbPath + "?_pragma=" + strings.Join(pragmas, "&_pragma=")
}

// Store is the SQLite-backed report archive.
type Store struct {
	db         *sql.DB
	maxReports int
}

// New opens (or creates) the archive at dbPath and applies migrations.
// maxReports bounds retention: archiving beyond it prunes the oldest
// reports. Zero disables pruning.
func New(dbPath string, maxReports int) (*Store, error) {
	db, err := sql.Open("sqlite", archiveDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(connLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	s := &Store{db: db, maxReports: maxReports}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("report store: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Integrity runs SQLite's quick_check and fails on the first reported
// corruption. Cheaper than a full integrity_check, good enough for a
// readiness probe.
func (s *Store) Integrity(ctx context.Context) error {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA quick_check(1)").Scan(&result); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("quick_check: %s", result)
	}
	return nil
}

const reportsSchema = `
CREATE TABLE IF NOT EXISTS reports (
	report_id     TEXT PRIMARY KEY,
	deck_hash     TEXT NOT NULL,
	origin        TEXT NOT NULL,
	deck_path     TEXT,
	clean         INTEGER NOT NULL,
	issue_count   INTEGER NOT NULL,
	issues_json   TEXT NOT NULL,
	created_at_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at_ms);
CREATE INDEX IF NOT EXISTS idx_reports_hash ON reports(deck_hash);
`

func (s *Store) migrate() error {
	var have int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&have); err != nil {
		return err
	}
	if have >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{reportsSchema, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
