package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/inventario/internal/store"
)

// SQLite stores blobs in the blobs table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite returns a Store over an open database with the schema applied.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Put stores data under (c, key).
func (s *SQLite) Put(ctx context.Context, c Collection, key string, data []byte, contentType string) error {
	if err := validate(c, key); err != nil {
		return err
	}
	return store.PutBlob(ctx, s.db, string(c), key, data, contentType)
}

// Get returns the blob or nil.
func (s *SQLite) Get(ctx context.Context, c Collection, key string) (*Blob, error) {
	if err := validate(c, key); err != nil {
		return nil, err
	}
	b, err := store.GetBlob(ctx, s.db, string(c), key)
	if err != nil || b == nil {
		return nil, err
	}
	return &Blob{Key: b.Key, Data: b.Data, ContentType: b.MIME}, nil
}

// Delete removes the blob and reports whether it existed.
func (s *SQLite) Delete(ctx context.Context, c Collection, key string) (bool, error) {
	if err := validate(c, key); err != nil {
		return false, err
	}
	return store.DeleteBlob(ctx, s.db, string(c), key)
}

// List returns every blob in c ordered by key.
func (s *SQLite) List(ctx context.Context, c Collection) ([]Blob, error) {
	if err := validate(c, "-"); err != nil {
		return nil, err
	}
	rows, err := store.ListBlobs(ctx, s.db, string(c))
	if err != nil {
		return nil, err
	}
	out := make([]Blob, 0, len(rows))
	for _, b := range rows {
		out = append(out, Blob{Key: b.Key, Data: b.Data, ContentType: b.MIME})
	}
	return out, nil
}

// Drop deletes every blob. A busy or locked database reports ErrBlocked.
func (s *SQLite) Drop(ctx context.Context) error {
	if _, err := store.DropBlobs(ctx, s.db); err != nil {
		if isBusy(err) {
			return fmt.Errorf("%w: %v", ErrBlocked, err)
		}
		return err
	}
	return nil
}

// Driver reports DriverSQLite.
func (s *SQLite) Driver() Driver { return DriverSQLite }

func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
