package store

import (
	"context"
	"database/sql"
	"fmt"
)

// GetSnapshot returns the stored document for key, or nil if none exists.
func GetSnapshot(ctx context.Context, db *sql.DB, key string) ([]byte, error) {
	var payload []byte
	err := db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, key,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}
	return payload, nil
}

// PutSnapshot overwrites the document stored under key.
func PutSnapshot(ctx context.Context, db *sql.DB, key string, payload []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload,
	)
	if err != nil {
		return fmt.Errorf("putting snapshot: %w", err)
	}
	return nil
}

// DeleteSnapshot removes the document stored under key. Missing keys are not an error.
func DeleteSnapshot(ctx context.Context, db *sql.DB, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}
