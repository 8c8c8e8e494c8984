// Package history keeps an append-only event log of everything the
// coordinator does, in a single SQLite database shared across
// repositories. It is strictly best-effort observability: commands record
// into it but never fail because of it.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Event types recorded by the coordinator.
const (
	EventSpawned   = "spawned"
	EventMerged    = "merged"
	EventKilled    = "killed"
	EventUnblocked = "unblocked"
	EventConflict  = "merge_conflict"
	EventEpicStart = "epic_started"
	EventEpicDone  = "epic_cleaned"
)

// Event is one recorded coordinator action.
type Event struct {
	ID        int64
	RepoID    string
	Task      string
	EventType string
	Detail    string
	Timestamp time.Time
}

// Log is the event database.
type Log struct {
	db *sql.DB
}

// Open creates or opens the shared event database under the user config
// directory.
func Open() (*Log, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config directory: %w", err)
	}
	dir := filepath.Join(cfgDir, "wt")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	return OpenAt(filepath.Join(dir, "history.db"))
}

// OpenAt opens the event database at an explicit path.
func OpenAt(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// WAL mode so concurrent wt invocations do not block each other.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

func (l *Log) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		repo_id     TEXT NOT NULL,
		task        TEXT DEFAULT '',
		event_type  TEXT NOT NULL,
		detail      TEXT DEFAULT '',
		timestamp   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_repo ON events(repo_id, timestamp);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record appends an event. Errors are returned but callers are expected
// to treat them as non-fatal.
func (l *Log) Record(repoID, task, eventType, detail string) error {
	_, err := l.db.Exec(
		`INSERT INTO events (repo_id, task, event_type, detail, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		repoID, task, eventType, detail, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Recent returns the newest events for a repository, newest first. When
// task is non-empty, only that task's events are returned.
func (l *Log) Recent(repoID, task string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, repo_id, task, event_type, detail, timestamp
	          FROM events WHERE repo_id = ?`
	args := []any{repoID}
	if task != "" {
		query += " AND task = ?"
		args = append(args, task)
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RepoID, &e.Task, &e.EventType, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
