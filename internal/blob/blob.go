// Package blob stores binary photo and image assets in two independent
// collections.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Collection names one of the two key spaces.
type Collection string

// Collections.
const (
	Photos       Collection = "photos"
	LayoutImages Collection = "layoutImages"
)

// Collections lists every collection.
var Collections = []Collection{Photos, LayoutImages}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	return c == Photos || c == LayoutImages
}

// Driver identifies a Store implementation.
type Driver string

// Drivers.
const (
	DriverMemory     Driver = "memory"
	DriverSQLite     Driver = "sqlite"
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// ErrBlocked is returned by Drop when another consumer holds the store open.
var ErrBlocked = errors.New("blob: store is in use by another consumer")

// Blob is one stored asset.
type Blob struct {
	Key         string
	Data        []byte
	ContentType string
}

// Store is key/value storage for binary assets. Get returns nil, nil for
// missing keys. Put replaces existing values.
type Store interface {
	Put(ctx context.Context, c Collection, key string, data []byte, contentType string) error
	Get(ctx context.Context, c Collection, key string) (*Blob, error)
	Delete(ctx context.Context, c Collection, key string) (bool, error)
	List(ctx context.Context, c Collection) ([]Blob, error)
	// Drop removes every blob in every collection.
	Drop(ctx context.Context) error
	Driver() Driver
}

// DropAll drops s. A drop blocked by another consumer is logged and treated
// as success.
func DropAll(ctx context.Context, s Store, log *slog.Logger) error {
	err := s.Drop(ctx)
	if errors.Is(err, ErrBlocked) {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("blob store drop blocked by another consumer, continuing", "driver", s.Driver())
		return nil
	}
	return err
}

// Exists reports whether (c, key) holds a blob.
func Exists(ctx context.Context, s Store, c Collection, key string) (bool, error) {
	b, err := s.Get(ctx, c, key)
	if err != nil {
		return false, err
	}
	return b != nil, nil
}

// Copy duplicates (c, from) to (c, to) and reports whether the source existed.
func Copy(ctx context.Context, s Store, c Collection, from, to string) (bool, error) {
	b, err := s.Get(ctx, c, from)
	if err != nil || b == nil {
		return false, err
	}
	if err := s.Put(ctx, c, to, b.Data, b.ContentType); err != nil {
		return false, err
	}
	return true, nil
}

func validate(c Collection, key string) error {
	if !c.Valid() {
		return fmt.Errorf("unknown blob collection %q", c)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty blob key")
	}
	return nil
}
