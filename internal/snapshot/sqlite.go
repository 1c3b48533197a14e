package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/inventario/internal/store"
)

// SQLite stores the document in the snapshots table.
type SQLite struct {
	db       *sql.DB
	key      string
	maxBytes int
}

// NewSQLite returns a Store over an open database with the schema applied.
func NewSQLite(db *sql.DB, key string, maxBytes int) *SQLite {
	if key == "" {
		key = DefaultKey
	}
	return &SQLite{db: db, key: key, maxBytes: maxBytes}
}

// Load returns the stored document or nil.
func (s *SQLite) Load(ctx context.Context) ([]byte, error) {
	return store.GetSnapshot(ctx, s.db, s.key)
}

// Save overwrites the stored document.
func (s *SQLite) Save(ctx context.Context, data []byte) error {
	if err := checkQuota(data, s.maxBytes); err != nil {
		return err
	}
	if err := store.PutSnapshot(ctx, s.db, s.key, data); err != nil {
		if isDiskFull(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return err
	}
	return nil
}

// Clear removes the stored document.
func (s *SQLite) Clear(ctx context.Context) error {
	return store.DeleteSnapshot(ctx, s.db, s.key)
}

// Driver reports DriverSQLite.
func (s *SQLite) Driver() Driver { return DriverSQLite }

func isDiskFull(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_FULL
}
