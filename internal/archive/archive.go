// Package archive bundles a session document and every stored blob into a
// single zip file, and restores it.
//
// Layout:
//
//	session.json
//	photos/<key>.jpg
//	layoutImages/<key>
//
// Either folder is omitted when its collection is empty.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

// Entry names.
const (
	StateEntry = "session.json"
	PhotosDir  = "photos/"
	LayoutDir  = "layoutImages/"
	photoExt   = ".jpg"
)

var (
	// ErrMissingState is returned when an archive has no session.json.
	ErrMissingState = errors.New("archive: session.json not found")
	// ErrNotZip is returned for files that are not zip archives.
	ErrNotZip = errors.New("archive: not a .zip file")
	// ErrNoPhotos is returned by ReadPhotos when there is no photos/ folder.
	ErrNoPhotos = errors.New("archive: photos folder not found")
)

// FileName is the download name of an archive created at.
func FileName(final bool, at time.Time) string {
	return fmt.Sprintf("inventario-%s-%s.zip", Mode(final), at.Format(time.DateOnly))
}

// Mode is the tag naming final and editable archives.
func Mode(final bool) string {
	if final {
		return "FINALIZADO"
	}
	return "backup-editable"
}

// ExportResult counts what went into an archive.
type ExportResult struct {
	Photos       int
	LayoutImages int
}

// Export writes doc and every blob of store to w. A final archive has
// readOnlyMode forced on in its document.
func Export(ctx context.Context, w io.Writer, doc []byte, store blob.Store, final bool) (*ExportResult, error) {
	if final {
		var err error
		if doc, err = forceReadOnly(doc); err != nil {
			return nil, err
		}
	}

	var photos, layout []blob.Blob
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		photos, err = store.List(gctx, blob.Photos)
		return err
	})
	g.Go(func() error {
		var err error
		layout, err = store.List(gctx, blob.LayoutImages)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}

	zw := zip.NewWriter(w)
	if err := writeEntry(zw, StateEntry, doc); err != nil {
		return nil, err
	}
	for _, b := range photos {
		if err := writeEntry(zw, PhotosDir+b.Key+photoExt, b.Data); err != nil {
			return nil, err
		}
	}
	for _, b := range layout {
		if err := writeEntry(zw, LayoutDir+b.Key, b.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finishing archive: %w", err)
	}
	return &ExportResult{Photos: len(photos), LayoutImages: len(layout)}, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// forceReadOnly sets readOnlyMode in a JSON object, keeping every other
// field as is.
func forceReadOnly(doc []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("decoding session document: %w", err)
	}
	fields["readOnlyMode"] = json.RawMessage("true")
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding session document: %w", err)
	}
	return out, nil
}

// ImportResult is the outcome of Import.
type ImportResult struct {
	// State is the session document, verbatim.
	State        []byte
	Photos       int
	LayoutImages int
	// Failed counts blobs that could not be stored.
	Failed int
}

// Import validates the archive, then restores its blobs into store.
// Photos report progress through notifier. A blob that cannot be stored is
// counted and skipped; blobs restored before a later failure are not
// rolled back. The caller installs State afterwards.
func Import(ctx context.Context, r io.ReaderAt, size int64, name string, store blob.Store, notifier notify.Notifier, log *slog.Logger) (*ImportResult, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		return nil, fmt.Errorf("%w: %s", ErrNotZip, name)
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = slog.Default()
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotZip, err)
	}

	var stateFile *zip.File
	var photos, layout []*zip.File
	for _, f := range zr.File {
		switch {
		case f.FileInfo().IsDir():
		case f.Name == StateEntry:
			stateFile = f
		case strings.HasPrefix(f.Name, PhotosDir):
			photos = append(photos, f)
		case strings.HasPrefix(f.Name, LayoutDir):
			layout = append(layout, f)
		}
	}
	if stateFile == nil {
		return nil, ErrMissingState
	}
	doc, err := readFile(stateFile)
	if err != nil {
		return nil, err
	}
	if _, err := state.Decode(doc); err != nil {
		return nil, fmt.Errorf("archive: %s: %w", StateEntry, err)
	}

	res := &ImportResult{State: doc}
	for i, f := range photos {
		key := photoKey(f.Name)
		data, err := readFile(f)
		if err != nil {
			return nil, err
		}
		if err := store.Put(ctx, blob.Photos, key, data, contentType(data)); err != nil {
			log.Warn("photo not restored", "key", key, "error", err)
			res.Failed++
		} else {
			res.Photos++
		}
		notifier.Notify(ctx, notify.Notice{
			Kind:    notify.KindProgress,
			Level:   notify.LevelInfo,
			Message: fmt.Sprintf("Restaurando foto %d de %d...", i+1, len(photos)),
			Done:    i + 1,
			Total:   len(photos),
		})
	}
	for _, f := range layout {
		key := strings.TrimPrefix(f.Name, LayoutDir)
		data, err := readFile(f)
		if err != nil {
			return nil, err
		}
		if err := store.Put(ctx, blob.LayoutImages, key, data, contentType(data)); err != nil {
			log.Warn("layout image not restored", "key", key, "error", err)
			res.Failed++
			continue
		}
		res.LayoutImages++
	}
	return res, nil
}

// PhotoEntry is one photo read from an archive.
type PhotoEntry struct {
	Key         string
	Data        []byte
	ContentType string
}

// ReadPhotos returns the photos/ folder of an archive.
func ReadPhotos(r io.ReaderAt, size int64) ([]PhotoEntry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotZip, err)
	}
	var entries []PhotoEntry
	found := false
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, PhotosDir) {
			continue
		}
		found = true
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, PhotoEntry{Key: photoKey(f.Name), Data: data, ContentType: contentType(data)})
	}
	if !found {
		return nil, ErrNoPhotos
	}
	return entries, nil
}

// photoKey recovers a blob key from an entry name. Keys may contain dots,
// so only image extensions are stripped.
func photoKey(name string) string {
	key := strings.TrimPrefix(name, PhotosDir)
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg", ".png":
		return strings.TrimSuffix(key, path.Ext(key))
	}
	return key
}

func contentType(data []byte) string {
	return http.DetectContentType(data)
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return buf.Bytes(), nil
}
