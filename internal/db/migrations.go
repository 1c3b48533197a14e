package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: blobs are only ever read by (collection, key) or by
	// collection, both served by the primary key. Drop the key index older
	// databases carry.
	`DROP INDEX IF EXISTS idx_blobs_key`,
}

// Migrate applies pending migrations on top of an existing schema.
func Migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
