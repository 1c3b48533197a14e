package blob

import (
	"context"
	"fmt"

	"github.com/erazemk/inventario/internal/db"
)

// Options selects and configures a Store.
type Options struct {
	Driver     Driver
	SQLitePath string
	FSRoot     string
	S3         S3Config
}

// Open builds the Store named by opts.Driver (sqlite when empty). The
// returned close function releases any connection the store holds.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), noop, nil
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
		return NewSQLite(database), database.Close, nil
	case DriverFilesystem:
		f, err := NewFilesystem(opts.FSRoot)
		if err != nil {
			return nil, nil, err
		}
		return f, noop, nil
	case DriverS3:
		s, err := NewS3(ctx, opts.S3)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown blob driver %q", opts.Driver)
	}
}
