package db

import (
	"path/filepath"
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	for _, table := range []string{"snapshots", "blobs", "settings"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "inventario.sqlite3")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
}

func TestBlobCollectionConstraint(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO blobs (collection, key, data) VALUES ('thumbnails', 'x', x'00')`)
	if err == nil {
		t.Fatal("expected CHECK constraint to reject unknown collection")
	}
}

func TestMigrateDropsBlobKeyIndex(t *testing.T) {
	database := NewTestDB(t)

	if _, err := database.Exec(`CREATE INDEX idx_blobs_key ON blobs(key)`); err != nil {
		t.Fatalf("creating legacy index: %v", err)
	}
	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var count int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_blobs_key'`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("querying indexes: %v", err)
	}
	if count != 0 {
		t.Errorf("idx_blobs_key still present after Migrate")
	}
}
