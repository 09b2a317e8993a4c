// ABOUTME: Versioned schema migrations for the board database, tracked in schema_migrations.
// ABOUTME: Each step runs in its own transaction; applied versions are never re-run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create cards",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS cards (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				status TEXT NOT NULL,
				sort INTEGER NOT NULL,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				description TEXT,
				labels TEXT,
				due_date INTEGER,
				archived INTEGER NOT NULL DEFAULT 0,
				priority TEXT
			)`,
		},
	},
	{
		version: 2,
		name:    "card indexes",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_cards_status_sort ON cards (status, sort)`,
			`CREATE INDEX IF NOT EXISTS idx_cards_archived ON cards (archived)`,
			`CREATE INDEX IF NOT EXISTS idx_cards_due_date ON cards (due_date)`,
		},
	},
	{
		version: 3,
		name:    "epics",
		stmts: []string{
			`ALTER TABLE cards ADD COLUMN is_epic INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE cards ADD COLUMN epic_id TEXT`,
			`CREATE INDEX IF NOT EXISTS idx_cards_epic_id ON cards (epic_id)`,
			`CREATE INDEX IF NOT EXISTS idx_cards_is_epic ON cards (is_epic)`,
		},
	},
	{
		version: 4,
		name:    "focus status",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS focus_status (
				id TEXT PRIMARY KEY,
				message TEXT NOT NULL DEFAULT '',
				mode TEXT NOT NULL DEFAULT 'idle',
				focus_card_id TEXT,
				updated_at INTEGER
			)`,
		},
	},
	{
		version: 5,
		name:    "card comments",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS card_comments (
				id TEXT PRIMARY KEY,
				card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
				parent_id TEXT,
				author TEXT,
				text TEXT NOT NULL,
				created_at INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_card_comments_card ON card_comments (card_id, created_at)`,
		},
	},
	{
		version: 6,
		name:    "card attachments",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS card_attachments (
				id TEXT PRIMARY KEY,
				card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
				kind TEXT NOT NULL,
				blob_key TEXT NOT NULL,
				mime_type TEXT NOT NULL,
				size_bytes INTEGER NOT NULL,
				author TEXT,
				created_at INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_card_attachments_card ON card_attachments (card_id, created_at)`,
		},
	},
}

// SchemaVersion is the highest migration version this binary knows.
func SchemaVersion() int {
	return migrations[len(migrations)-1].version
}

func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		m.version, m.name, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("record migration %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return nil
}
