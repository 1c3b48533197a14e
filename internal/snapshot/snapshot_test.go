package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventario/internal/db"
)

func TestMemoryQuota(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(8)

	require.NoError(t, m.Save(ctx, []byte(`{"a":1}`)))
	err := m.Save(ctx, []byte(`{"a":123456}`))
	require.ErrorIs(t, err, ErrQuotaExceeded)

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got), "failed save must not replace the document")
	assert.Equal(t, 2, m.Saves())
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	database, path := db.NewFileTestDB(t)
	s := NewSQLite(database, "", 0)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Save(ctx, []byte(`{"loggedIn":true}`)))
	database.Close()

	reopened, err := db.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err = NewSQLite(reopened, DefaultKey, 0).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"loggedIn":true}`, string(got))
}

func TestSQLiteStoreQuotaAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(db.NewTestDB(t), "k", 4)

	require.ErrorIs(t, s.Save(ctx, []byte("too large")), ErrQuotaExceeded)
	require.NoError(t, s.Save(ctx, []byte("ok")))
	require.NoError(t, s.Clear(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, DriverSQLite, s.Driver())
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())
	require.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "data", "state.sqlite3")
	s, closeFn, err = Open(ctx, Options{SQLitePath: path})
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, s.Driver())
	require.NoError(t, s.Save(ctx, []byte("{}")))
	require.NoError(t, closeFn())

	_, _, err = Open(ctx, Options{Driver: "redis"})
	require.Error(t, err)

	_, _, err = Open(ctx, Options{Driver: DriverPostgres})
	require.Error(t, err, "postgres without a dsn must fail")
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("INVENTARIO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("INVENTARIO_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pg, err := OpenPostgres(ctx, dsn, "test-"+t.Name(), 16)
	require.NoError(t, err)
	defer pg.Close()
	defer pg.Clear(ctx)

	require.NoError(t, pg.Save(ctx, []byte(`{"a":1}`)))
	require.ErrorIs(t, pg.Save(ctx, []byte(`{"a":"0123456789"}`)), ErrQuotaExceeded)

	got, err := pg.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}
