// Package store provides SQLite persistence for Groundswell.
// One database holds everything the decision layer needs across runs:
// pacing state, the deferred action queue, sniper deployments and their
// notifications, the replied-post set, the watch list, and intel notes.
//
// Every mutating operation runs inside a single transaction so the
// read-modify-write sequence is atomic. A missing database file is a
// first run, not an error.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pacing_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		last_action_time DATETIME,
		consecutive_count INTEGER NOT NULL DEFAULT 0
	);

	INSERT OR IGNORE INTO pacing_state (id, last_action_time, consecutive_count)
	VALUES (1, NULL, 0);

	CREATE TABLE IF NOT EXISTS daily_counts (
		subreddit TEXT NOT NULL,
		day TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (subreddit, day)
	);

	CREATE TABLE IF NOT EXISTS action_queue (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		subreddit TEXT NOT NULL,
		target_id TEXT,
		priority INTEGER NOT NULL DEFAULT 1,
		payload TEXT,
		queued_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_queue_priority ON action_queue(priority DESC, queued_at);

	CREATE TABLE IF NOT EXISTS deployments (
		post_id TEXT PRIMARY KEY,
		comment_id TEXT NOT NULL,
		comment_text TEXT,
		subreddit TEXT,
		triggers TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'monitoring',
		op_replied INTEGER NOT NULL DEFAULT 0,
		deployed_at DATETIME NOT NULL,
		triggered_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_deployments_status ON deployments(status);

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id TEXT NOT NULL,
		comment_id TEXT NOT NULL,
		subreddit TEXT,
		trigger_word TEXT NOT NULL,
		op_comment_id TEXT,
		op_comment TEXT,
		priority INTEGER NOT NULL,
		detected_at DATETIME NOT NULL,
		read INTEGER NOT NULL DEFAULT 0,
		handled_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);

	CREATE TABLE IF NOT EXISTS replied_posts (
		post_id TEXT PRIMARY KEY,
		replied_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS watched_posts (
		url TEXT PRIMARY KEY,
		added_at DATETIME NOT NULL,
		last_checked DATETIME,
		known_comment_ids TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS intel_analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id TEXT,
		title TEXT,
		sentiment TEXT NOT NULL,
		url TEXT,
		excerpt TEXT,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
