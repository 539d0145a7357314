package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		// One row per persisted action, for history and debugging.
		`CREATE TABLE IF NOT EXISTS action_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			payload TEXT,
			dispatched_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_action_log_dispatched_at ON action_log(dispatched_at);`,
		`CREATE INDEX IF NOT EXISTS idx_action_log_action ON action_log(action);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
