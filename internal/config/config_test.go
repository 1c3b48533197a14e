package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Snapshot.Driver)
	assert.Equal(t, "inventarioProState", cfg.Snapshot.Key)
	assert.Equal(t, 5<<20, cfg.Snapshot.MaxBytes)
	assert.Equal(t, filepath.Join("data", "inventario.db"), cfg.Snapshot.SQLitePath)
	assert.Equal(t, cfg.Snapshot.SQLitePath, cfg.Blob.SQLitePath)
	assert.Equal(t, filepath.Join("data", "blobs"), cfg.Blob.FSRoot)
	assert.Equal(t, 30*time.Second, cfg.Autosave.Interval)
	assert.Equal(t, 2<<20, cfg.Photos.MaxBytes)
	assert.Equal(t, 5*time.Second, cfg.Undo.Window)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "America/Mexico_City", cfg.Location().String())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
data_dir: /var/lib/inventario
blob:
  driver: fs
autosave:
  interval: 1m
page_size: 25
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("INVENTARIO_PAGE_SIZE", "10")
	t.Setenv("INVENTARIO_SNAPSHOT_DRIVER", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/inventario", cfg.DataDir)
	assert.Equal(t, "fs", cfg.Blob.Driver)
	assert.Equal(t, "/var/lib/inventario/blobs", cfg.Blob.FSRoot)
	assert.Equal(t, time.Minute, cfg.Autosave.Interval)
	assert.Equal(t, 10, cfg.PageSize, "environment overrides the file")
	assert.Equal(t, "memory", cfg.Snapshot.Driver)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown snapshot driver", map[string]string{"INVENTARIO_SNAPSHOT_DRIVER": "redis"}},
		{"postgres without dsn", map[string]string{"INVENTARIO_SNAPSHOT_DRIVER": "postgres"}},
		{"unknown blob driver", map[string]string{"INVENTARIO_BLOB_DRIVER": "gcs"}},
		{"s3 without bucket", map[string]string{"INVENTARIO_BLOB_DRIVER": "s3"}},
		{"bad timezone", map[string]string{"INVENTARIO_TIMEZONE": "Mars/Olympus"}},
		{"zero page size", map[string]string{"INVENTARIO_PAGE_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
