package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is a single schema migration.
type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations. New entries
// are appended at the end; existing entries are never modified.
var migrations = []migration{
	{
		version:     1,
		description: "initial schema (applied via schemaSQL)",
		apply:       func(tx *sql.Tx) error { return nil },
	},
	{
		version:     2,
		description: "add duration and status columns to pages",
		apply: func(tx *sql.Tx) error {
			// Present in the base schema for fresh databases; may already
			// exist. Safe idempotent approach.
			for _, col := range []string{
				"ALTER TABLE pages ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0",
				"ALTER TABLE pages ADD COLUMN status TEXT NOT NULL DEFAULT 'pending'",
			} {
				if _, err := tx.Exec(col); err != nil {
					slog.Debug("migration 2: column may already exist", "sql", col, "error", err)
				}
			}
			return nil
		},
	},
}

// Migrate runs all pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("starting migration %d: %w", m.version, err)
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_version (version, description) VALUES (?, ?)`,
			m.version, m.description); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
		slog.Info("store: migration applied", "version", m.version, "description", m.description)
	}
	return nil
}
