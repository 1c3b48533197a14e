package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Blob is one stored binary asset.
type Blob struct {
	Collection string
	Key        string
	Data       []byte
	MIME       string
	CreatedAt  time.Time
}

// PutBlob stores data under (collection, key), replacing any previous value.
func PutBlob(ctx context.Context, db *sql.DB, collection, key string, data []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO blobs (collection, key, data, mime) VALUES (?, ?, ?, ?)
		 ON CONFLICT(collection, key) DO UPDATE SET data = excluded.data, mime = excluded.mime`,
		collection, key, data, nullString(mime),
	)
	if err != nil {
		return fmt.Errorf("putting blob: %w", err)
	}
	return nil
}

// GetBlob returns the blob stored under (collection, key), or nil if none exists.
func GetBlob(ctx context.Context, db *sql.DB, collection, key string) (*Blob, error) {
	b := &Blob{Collection: collection, Key: key}
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT data, mime, created_at FROM blobs WHERE collection = ? AND key = ?`,
		collection, key,
	).Scan(&b.Data, &mime, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting blob: %w", err)
	}
	b.MIME = mime.String
	return b, nil
}

// DeleteBlob removes (collection, key) and reports whether it existed.
func DeleteBlob(ctx context.Context, db *sql.DB, collection, key string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM blobs WHERE collection = ? AND key = ?`, collection, key,
	)
	if err != nil {
		return false, fmt.Errorf("deleting blob: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted blob: %w", err)
	}
	return n > 0, nil
}

// ListBlobs returns every blob in a collection, ordered by key.
func ListBlobs(ctx context.Context, db *sql.DB, collection string) ([]Blob, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT key, data, mime, created_at FROM blobs WHERE collection = ? ORDER BY key`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	defer rows.Close()

	var blobs []Blob
	for rows.Next() {
		b := Blob{Collection: collection}
		var mime sql.NullString
		if err := rows.Scan(&b.Key, &b.Data, &mime, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning blob: %w", err)
		}
		b.MIME = mime.String
		blobs = append(blobs, b)
	}
	return blobs, rows.Err()
}

// DropBlobs removes every blob in every collection and returns how many were removed.
func DropBlobs(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM blobs`)
	if err != nil {
		return 0, fmt.Errorf("dropping blobs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting dropped blobs: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
