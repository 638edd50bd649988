// Package audit implements a local, non-secret operation log for the
// vault: which operation ran against which domain and when. It never
// stores passwords, master passwords, or key material — only enough to
// answer "what did I do and when" questions about a vault.
package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Log wraps the SQLite handle backing the audit trail.
type Log struct {
	sql *sql.DB
}

// Open initializes a SQLite database at path and returns a Log wrapper,
// creating the schema if it doesn't exist yet.
func Open(path string) (*Log, error) {
	if path == "" {
		return nil, fmt.Errorf("audit: database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("audit: create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open sqlite database: %w", err)
	}

	if err := handle.Ping(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("audit: ping sqlite database: %w", err)
	}

	if err := ensurePerm0600(path); err != nil {
		handle.Close()
		return nil, err
	}

	l := &Log{sql: handle}
	if err := l.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return l, nil
}

// Close releases the database resources.
func (l *Log) Close() error {
	if l == nil || l.sql == nil {
		return nil
	}
	return l.sql.Close()
}

func ensurePerm0600(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("audit: chmod database: %w", err)
	}
	return nil
}

const createOperationsTable = `
CREATE TABLE IF NOT EXISTS operations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at DATETIME NOT NULL,
	operation  TEXT     NOT NULL,
	domain     TEXT     NOT NULL DEFAULT '',
	succeeded  INTEGER  NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_operations_occurred_at ON operations(occurred_at);
`

func (l *Log) migrate() error {
	if l == nil || l.sql == nil {
		return fmt.Errorf("audit: database handle is nil")
	}
	if _, err := l.sql.Exec(createOperationsTable); err != nil {
		return fmt.Errorf("audit: migrate schema: %w", err)
	}
	return nil
}

// Entry is one recorded operation.
type Entry struct {
	ID         int64
	OccurredAt time.Time
	Operation  string
	Domain     string
	Succeeded  bool
}

// Record appends an entry to the audit log. Failures to write are returned
// to the caller but are meant to be logged and ignored rather than treated
// as fatal — the audit trail is a convenience, not the source of truth.
func (l *Log) Record(operation, domain string, succeeded bool) error {
	if l == nil || l.sql == nil {
		return fmt.Errorf("audit: database handle is nil")
	}
	_, err := l.sql.Exec(
		`INSERT INTO operations (occurred_at, operation, domain, succeeded) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), operation, domain, succeeded,
	)
	if err != nil {
		return fmt.Errorf("audit: insert entry: %w", err)
	}
	return nil
}

// Recent returns the most recent n audit entries, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	if l == nil || l.sql == nil {
		return nil, fmt.Errorf("audit: database handle is nil")
	}
	rows, err := l.sql.Query(
		`SELECT id, occurred_at, operation, domain, succeeded FROM operations ORDER BY id DESC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: select recent entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var occurredAt string
		var succeeded int
		if err := rows.Scan(&e.ID, &occurredAt, &e.Operation, &e.Domain, &succeeded); err != nil {
			return nil, fmt.Errorf("audit: scan entry: %w", err)
		}
		t, err := time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("audit: parse occurred_at: %w", err)
		}
		e.OccurredAt = t
		e.Succeeded = succeeded != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate entries: %w", err)
	}
	return out, nil
}
