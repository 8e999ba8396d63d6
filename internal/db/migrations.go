package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: composite index backing the per-reporter claim inbox.
	`CREATE INDEX IF NOT EXISTS idx_claims_item_status ON claims(item_id, status)`,
	// Migration 2: unread notification counts.
	`CREATE INDEX IF NOT EXISTS idx_notifications_unread
	     ON notifications(user_id) WHERE is_read = 0`,
}

// Migrate ensures the schema and runs pending migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
