package snapshot

import (
	"context"
	"fmt"

	"github.com/erazemk/inventario/internal/db"
)

// Options selects and configures a Store.
type Options struct {
	Driver      Driver
	SQLitePath  string
	PostgresDSN string
	Key         string
	MaxBytes    int
}

// Open builds the Store named by opts.Driver (sqlite when empty). The
// returned close function releases any connection the store holds.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(opts.MaxBytes), noop, nil
	case DriverSQLite, "":
		path := opts.SQLitePath
		if path == "" {
			path = "inventario.sqlite3"
		}
		database, err := db.Open(path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, nil, err
		}
		return NewSQLite(database, opts.Key, opts.MaxBytes), database.Close, nil
	case DriverPostgres:
		pg, err := OpenPostgres(ctx, opts.PostgresDSN, opts.Key, opts.MaxBytes)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot driver %q", opts.Driver)
	}
}
