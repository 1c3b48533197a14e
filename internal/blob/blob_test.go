package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventario/internal/db"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": NewSQLite(db.NewTestDB(t)),
		"fs":     fsStore,
		"s3":     newS3WithClient(newFakeS3(), "bucket", "inventario/"),
	}
}

func TestStoreConformance(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := s.Get(ctx, Photos, "inventory-100001")
			require.NoError(t, err)
			assert.Nil(t, got, "missing key is absence, not an error")

			require.NoError(t, s.Put(ctx, Photos, "inventory-100001", []byte("jpeg-1"), "image/jpeg"))
			require.NoError(t, s.Put(ctx, Photos, "location-SALA A/B 01", []byte("jpeg-2"), "image/jpeg"))
			require.NoError(t, s.Put(ctx, Photos, "inventory-0.55", []byte("jpeg-3"), ""))
			require.NoError(t, s.Put(ctx, LayoutImages, "img-1", []byte("png"), "image/png"))

			got, err = s.Get(ctx, Photos, "inventory-100001")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "jpeg-1", string(got.Data))
			assert.Equal(t, "image/jpeg", got.ContentType)

			require.NoError(t, s.Put(ctx, Photos, "inventory-100001", []byte("jpeg-1b"), "image/jpeg"))
			got, _ = s.Get(ctx, Photos, "inventory-100001")
			assert.Equal(t, "jpeg-1b", string(got.Data), "put replaces")

			photos, err := s.List(ctx, Photos)
			require.NoError(t, err)
			keys := make([]string, 0, len(photos))
			for _, b := range photos {
				keys = append(keys, b.Key)
			}
			assert.Equal(t, []string{"inventory-0.55", "inventory-100001", "location-SALA A/B 01"}, keys)

			layout, err := s.List(ctx, LayoutImages)
			require.NoError(t, err)
			require.Len(t, layout, 1)
			assert.Equal(t, "png", string(layout[0].Data))

			existed, err := s.Delete(ctx, Photos, "inventory-0.55")
			require.NoError(t, err)
			assert.True(t, existed)
			existed, err = s.Delete(ctx, Photos, "inventory-0.55")
			require.NoError(t, err)
			assert.False(t, existed)

			copied, err := Copy(ctx, s, Photos, "inventory-100001", "additional-x")
			require.NoError(t, err)
			assert.True(t, copied)
			ok, err := Exists(ctx, s, Photos, "additional-x")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, DropAll(ctx, s, nil))
			for _, c := range Collections {
				left, err := s.List(ctx, c)
				require.NoError(t, err)
				assert.Empty(t, left, "collection %s not dropped", c)
			}
		})
	}
}

func TestStoreRejectsBadInput(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.Error(t, s.Put(ctx, "thumbnails", "k", nil, ""))
			assert.Error(t, s.Put(ctx, Photos, "  ", nil, ""))
			_, err := s.List(ctx, "thumbnails")
			assert.Error(t, err)
		})
	}
}

func TestFilesystemKeysStayInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	f, err := NewFilesystem(root)
	require.NoError(t, err)

	require.NoError(t, f.Put(ctx, Photos, "../escape", []byte("x"), ""))
	require.NoError(t, f.Put(ctx, Photos, "..", []byte("y"), ""))

	list, err := f.List(ctx, Photos)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "..", list[0].Key)
	assert.Equal(t, "../escape", list[1].Key)
}

func TestDropAllToleratesBlocked(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, Photos, "k", []byte("x"), ""))
	m.SetBlocked(true)

	assert.ErrorIs(t, m.Drop(ctx), ErrBlocked)
	assert.NoError(t, DropAll(ctx, m, nil))
}

func TestMemoryFailPut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")

	m.FailPut("bad", boom)
	assert.ErrorIs(t, m.Put(ctx, Photos, "bad", nil, ""), boom)
	m.FailPut("bad", nil)
	assert.NoError(t, m.Put(ctx, Photos, "bad", nil, ""))
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	for _, opts := range []Options{
		{Driver: DriverMemory},
		{Driver: DriverSQLite, SQLitePath: t.TempDir() + "/blobs.sqlite3"},
		{Driver: DriverFilesystem, FSRoot: t.TempDir()},
	} {
		s, closeFn, err := Open(ctx, opts)
		require.NoError(t, err)
		assert.Equal(t, opts.Driver, s.Driver())
		require.NoError(t, closeFn())
	}

	_, _, err := Open(ctx, Options{Driver: DriverS3})
	assert.Error(t, err, "s3 without bucket must fail")
	_, _, err = Open(ctx, Options{Driver: "indexeddb"})
	assert.Error(t, err)
}
