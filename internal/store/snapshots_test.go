package store

import (
	"context"
	"testing"

	"github.com/erazemk/inventario/internal/db"
)

func TestGetSnapshotMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetSnapshot(context.Background(), database, "inventarioProState")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing snapshot, got %q", got)
	}
}

func TestPutSnapshotOverwrites(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := PutSnapshot(ctx, database, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("first PutSnapshot: %v", err)
	}
	if err := PutSnapshot(ctx, database, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("second PutSnapshot: %v", err)
	}

	got, err := GetSnapshot(ctx, database, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("expected last write to win, got %s", got)
	}

	var count int
	database.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count)
	if count != 1 {
		t.Errorf("expected a single row, got %d", count)
	}
}

func TestDeleteSnapshot(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	PutSnapshot(ctx, database, "k", []byte(`{}`))
	if err := DeleteSnapshot(ctx, database, "k"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if err := DeleteSnapshot(ctx, database, "k"); err != nil {
		t.Fatalf("deleting twice should not fail: %v", err)
	}

	got, _ := GetSnapshot(ctx, database, "k")
	if got != nil {
		t.Error("expected snapshot to be gone")
	}
}
