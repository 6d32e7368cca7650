// Package store provides a SQLite-backed archive of support tickets produced
// by the email triage agent. Tickets are persisted across restarts so
// escalation queues and audit trails survive the process.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/ragbase/ragbase-go/internal/support"
)

// TicketStore persists and retrieves triage tickets. Implementations must be
// safe for concurrent use.
type TicketStore interface {
	// Save persists a single ticket.
	Save(ctx context.Context, ticket *support.Ticket) error
	// Recent returns the most recent n tickets, newest first. If fewer than n
	// tickets exist, all are returned.
	Recent(ctx context.Context, n int) ([]support.Ticket, error)
	// Escalations returns the most recent n tickets flagged for human review,
	// newest first.
	Escalations(ctx context.Context, n int) ([]support.Ticket, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a TicketStore backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the ticket database.
// It resolves to ~/.ragbase/tickets.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".ragbase")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "tickets.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tickets (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    ticket_id          TEXT    NOT NULL,
    urgency            TEXT    NOT NULL CHECK(urgency IN ('critical','high','medium','low')),
    category           TEXT    NOT NULL CHECK(category IN ('order','billing','technical','general')),
    sentiment          TEXT    NOT NULL CHECK(sentiment IN ('positive','negative','neutral')),
    suggested_response TEXT    NOT NULL,
    requires_human     INTEGER NOT NULL,
    customer_name      TEXT    NOT NULL,
    customer_email     TEXT    NOT NULL,
    created_at         INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_tickets_created
    ON tickets (created_at);
CREATE INDEX IF NOT EXISTS idx_tickets_requires_human_created
    ON tickets (requires_human, created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Save persists a single ticket.
func (s *SQLiteStore) Save(ctx context.Context, ticket *support.Ticket) error {
	const q = `
INSERT INTO tickets
    (ticket_id, urgency, category, sentiment, suggested_response,
     requires_human, customer_name, customer_email, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	requiresHuman := 0
	if ticket.RequiresHuman {
		requiresHuman = 1
	}

	_, err := s.db.ExecContext(ctx, q,
		ticket.TicketID, ticket.Urgency, ticket.Category, ticket.Sentiment,
		ticket.SuggestedResponse, requiresHuman,
		ticket.CustomerName, ticket.CustomerEmail, ticket.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	return nil
}

// Recent returns the most recent n tickets, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]support.Ticket, error) {
	const q = `
SELECT ticket_id, urgency, category, sentiment, suggested_response,
       requires_human, customer_name, customer_email, created_at
FROM   tickets
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	return s.query(ctx, q, n)
}

// Escalations returns the most recent n tickets that require human review,
// newest first.
func (s *SQLiteStore) Escalations(ctx context.Context, n int) ([]support.Ticket, error) {
	const q = `
SELECT ticket_id, urgency, category, sentiment, suggested_response,
       requires_human, customer_name, customer_email, created_at
FROM   tickets
WHERE  requires_human = 1
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	return s.query(ctx, q, n)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]support.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var tickets []support.Ticket
	for rows.Next() {
		var t support.Ticket
		var requiresHuman int
		var ts int64
		if err := rows.Scan(&t.TicketID, &t.Urgency, &t.Category, &t.Sentiment,
			&t.SuggestedResponse, &requiresHuman,
			&t.CustomerName, &t.CustomerEmail, &ts); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		t.RequiresHuman = requiresHuman != 0
		t.Timestamp = time.Unix(ts, 0)
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return tickets, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
