// Package store persists subjects, documents, preferences and the current
// plan in SQLite. Every mutating operation runs in its own transaction.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS subjects (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	exam_date  TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	color      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS topics (
	subject_id INTEGER NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	name       TEXT NOT NULL,
	progress   INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
	PRIMARY KEY (subject_id, name)
);

CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	path         TEXT NOT NULL UNIQUE,
	subject      TEXT NOT NULL DEFAULT 'General',
	size         INTEGER NOT NULL DEFAULT 0,
	checksum     TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	ingested_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS preferences (
	id               INTEGER PRIMARY KEY CHECK (id = 1),
	daily_goal_hours INTEGER NOT NULL,
	preferred_times  TEXT NOT NULL DEFAULT '[]',
	break_frequency  INTEGER NOT NULL,
	intensity        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plan_tasks (
	position   INTEGER PRIMARY KEY,
	subject_id INTEGER NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
	topic      TEXT NOT NULL,
	duration   INTEGER NOT NULL,
	priority   REAL NOT NULL,
	reason     TEXT NOT NULL,
	review     INTEGER NOT NULL DEFAULT 0,
	days_until INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_topics_subject ON topics(subject_id, position);
CREATE INDEX IF NOT EXISTS idx_documents_subject ON documents(subject);
CREATE INDEX IF NOT EXISTS idx_plan_subject ON plan_tasks(subject_id);
`

// DB wraps a sql.DB with study-planner operations.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the clock used for "today" and timestamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		db.now = now
	}
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	// One connection keeps PRAGMA foreign_keys and :memory: databases consistent.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	db := &DB{conn: conn, now: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database connection.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
