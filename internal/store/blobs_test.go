package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/erazemk/inventario/internal/db"
)

func TestPutAndGetBlob(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := PutBlob(ctx, database, "photos", "inventory-100001", []byte{1, 2, 3}, "image/jpeg"); err != nil {
		t.Fatalf("PutBlob: %v", err)
	}

	b, err := GetBlob(ctx, database, "photos", "inventory-100001")
	if err != nil {
		t.Fatalf("GetBlob: %v", err)
	}
	if b == nil {
		t.Fatal("expected blob, got nil")
	}
	if !bytes.Equal(b.Data, []byte{1, 2, 3}) {
		t.Errorf("unexpected data %v", b.Data)
	}
	if b.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", b.MIME)
	}

	// Same key in the other collection is independent.
	other, err := GetBlob(ctx, database, "layoutImages", "inventory-100001")
	if err != nil {
		t.Fatal(err)
	}
	if other != nil {
		t.Error("collections must not share keys")
	}
}

func TestPutBlobReplaces(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	PutBlob(ctx, database, "photos", "k", []byte("old"), "")
	PutBlob(ctx, database, "photos", "k", []byte("new"), "")

	b, _ := GetBlob(ctx, database, "photos", "k")
	if string(b.Data) != "new" {
		t.Errorf("expected replaced data, got %q", b.Data)
	}
	if b.MIME != "" {
		t.Errorf("expected empty mime, got %q", b.MIME)
	}
}

func TestDeleteBlob(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	PutBlob(ctx, database, "photos", "k", []byte("x"), "")

	existed, err := DeleteBlob(ctx, database, "photos", "k")
	if err != nil {
		t.Fatal(err)
	}
	if !existed {
		t.Error("expected first delete to report existing blob")
	}

	existed, err = DeleteBlob(ctx, database, "photos", "k")
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Error("expected second delete to report missing blob")
	}
}

func TestListAndDropBlobs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	PutBlob(ctx, database, "photos", "b", []byte("2"), "")
	PutBlob(ctx, database, "photos", "a", []byte("1"), "")
	PutBlob(ctx, database, "layoutImages", "img-1", []byte("3"), "")

	photos, err := ListBlobs(ctx, database, "photos")
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 2 || photos[0].Key != "a" || photos[1].Key != "b" {
		t.Fatalf("expected photos [a b], got %+v", photos)
	}

	n, err := DropBlobs(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 dropped blobs, got %d", n)
	}

	layout, _ := ListBlobs(ctx, database, "layoutImages")
	if len(layout) != 0 {
		t.Errorf("expected empty collection after drop, got %d", len(layout))
	}
}
