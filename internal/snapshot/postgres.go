package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    key        TEXT PRIMARY KEY,
    payload    BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// pgDiskFull is the SQLSTATE for disk_full.
const pgDiskFull = "53100"

// Postgres stores the document in a PostgreSQL table.
type Postgres struct {
	db       *sql.DB
	key      string
	maxBytes int
}

// OpenPostgres connects with the pgx driver and ensures the table exists.
func OpenPostgres(ctx context.Context, dsn, key string, maxBytes int) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required for %s driver", DriverPostgres)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshots table: %w", err)
	}
	if key == "" {
		key = DefaultKey
	}
	return &Postgres{db: db, key: key, maxBytes: maxBytes}, nil
}

// Load returns the stored document or nil.
func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = $1`, p.key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}
	return payload, nil
}

// Save overwrites the stored document.
func (p *Postgres) Save(ctx context.Context, data []byte) error {
	if err := checkQuota(data, p.maxBytes); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, payload, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		p.key, data,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgDiskFull {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("putting snapshot: %w", err)
	}
	return nil
}

// Clear removes the stored document.
func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = $1`, p.key); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error { return p.db.Close() }

// Driver reports DriverPostgres.
func (p *Postgres) Driver() Driver { return DriverPostgres }
