package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

const (
	metaSuffix = ".meta"
	tmpPrefix  = ".tmp-"
)

// Filesystem stores each blob as a file under root/<collection>/, with a
// JSON sidecar holding its content type and checksum.
type Filesystem struct {
	root string
}

type metaFile struct {
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag"`
	Size        int64     `json:"size"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFilesystem returns a Filesystem rooted at root, creating it if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./blobdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &Filesystem{root: root}, nil
}

// fileName maps a key to a single path element. Escaping keeps '/' and
// ".." inside the collection directory.
func fileName(key string) string {
	name := url.PathEscape(key)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return name
}

func (f *Filesystem) paths(c Collection, key string) (data, meta string, err error) {
	if err := validate(c, key); err != nil {
		return "", "", err
	}
	data = filepath.Join(f.root, string(c), fileName(key))
	return data, data + metaSuffix, nil
}

// Put writes data through a temporary file and renames it into place.
func (f *Filesystem) Put(_ context.Context, c Collection, key string, data []byte, contentType string) error {
	dataPath, metaPath, err := f.paths(c, key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dataPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating collection directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return fmt.Errorf("moving blob into place: %w", err)
	}

	sum := sha256.Sum256(data)
	mf := metaFile{
		ContentType: contentType,
		ETag:        hex.EncodeToString(sum[:]),
		Size:        int64(len(data)),
		UpdatedAt:   time.Now().UTC(),
	}
	raw, err := json.Marshal(mf)
	if err != nil {
		return fmt.Errorf("encoding blob metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return fmt.Errorf("writing blob metadata: %w", err)
	}
	return nil
}

// Get reads the blob or returns nil when the file does not exist.
func (f *Filesystem) Get(_ context.Context, c Collection, key string) (*Blob, error) {
	dataPath, metaPath, err := f.paths(c, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return &Blob{Key: key, Data: data, ContentType: readContentType(metaPath)}, nil
}

func readContentType(metaPath string) string {
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return ""
	}
	var mf metaFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return ""
	}
	return mf.ContentType
}

// Delete removes the blob and its sidecar.
func (f *Filesystem) Delete(_ context.Context, c Collection, key string) (bool, error) {
	dataPath, metaPath, err := f.paths(c, key)
	if err != nil {
		return false, err
	}
	err = os.Remove(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting blob: %w", err)
	}
	_ = os.Remove(metaPath)
	return true, nil
}

// List reads every blob in c ordered by key.
func (f *Filesystem) List(ctx context.Context, c Collection) ([]Blob, error) {
	if err := validate(c, "-"); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(f.root, string(c)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}

	var out []Blob
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, metaSuffix) || strings.HasPrefix(name, tmpPrefix) {
			continue
		}
		key, err := url.PathUnescape(name)
		if err != nil {
			continue
		}
		b, err := f.Get(ctx, c, key)
		if err != nil {
			return nil, err
		}
		if b != nil {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Drop removes every collection directory.
func (f *Filesystem) Drop(context.Context) error {
	for _, c := range Collections {
		err := os.RemoveAll(filepath.Join(f.root, string(c)))
		if errors.Is(err, syscall.EBUSY) {
			return fmt.Errorf("%w: %v", ErrBlocked, err)
		}
		if err != nil {
			return fmt.Errorf("dropping %s: %w", c, err)
		}
	}
	return nil
}

// Driver reports DriverFilesystem.
func (f *Filesystem) Driver() Driver { return DriverFilesystem }
