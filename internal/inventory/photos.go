package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/erazemk/inventario/internal/archive"
	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/imaging"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

func (s *Service) entityExists(st *state.State, ref PhotoRef) bool {
	switch ref.Kind {
	case model.PhotoInventory:
		return st.Item(ref.ID) != nil
	case model.PhotoAdditional:
		return st.Additional(ref.ID) != nil
	case model.PhotoLocation:
		return slices.ContainsFunc(st.Custodians, func(c model.Custodian) bool { return c.LocationWithID == ref.ID })
	default:
		panic(fmt.Sprintf("inventory: unhandled photo kind %d", int(ref.Kind)))
	}
}

// AttachPhoto normalises the image in r and stores it as the photo of ref,
// replacing any previous one.
func (s *Service) AttachPhoto(ctx context.Context, ref PhotoRef, r io.Reader) error {
	photo, err := imaging.Process(r, s.photoMaxBytes)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) {
			s.toast(ctx, notify.LevelError, fmt.Sprintf("La imagen es demasiado grande (máx %dMB).", s.photoMaxBytes>>20))
		}
		return fmt.Errorf("processing photo: %w", err)
	}

	return s.mutate(ctx, func(st *state.State, at time.Time) error {
		if !s.entityExists(st, ref) {
			return fmt.Errorf("%s %s: %w", ref.Kind, ref.ID, ErrNotFound)
		}
		if err := s.blobs.Put(ctx, blob.Photos, ref.Key(), photo.Data, photo.MIME); err != nil {
			s.toast(ctx, notify.LevelError, "Error al guardar la foto.")
			return fmt.Errorf("storing photo: %w", err)
		}
		st.PhotoFlags(ref.Kind)[ref.ID] = true
		st.LogActivity(at, "Foto subida", fmt.Sprintf("Tipo: %s, ID: %s", ref.Kind, ref.ID))
		s.toast(ctx, notify.LevelSuccess, "Foto adjuntada.")
		return nil
	})
}

// DeletePhoto removes the photo of ref.
func (s *Service) DeletePhoto(ctx context.Context, ref PhotoRef) error {
	return s.mutate(ctx, func(st *state.State, at time.Time) error {
		flags := st.PhotoFlags(ref.Kind)
		if !flags[ref.ID] {
			return fmt.Errorf("photo %s: %w", ref.Key(), ErrNotFound)
		}
		if _, err := s.blobs.Delete(ctx, blob.Photos, ref.Key()); err != nil {
			s.toast(ctx, notify.LevelError, "Error al eliminar la foto.")
			return fmt.Errorf("deleting photo: %w", err)
		}
		delete(flags, ref.ID)
		st.LogActivity(at, "Foto eliminada", fmt.Sprintf("Tipo: %s, ID: %s", ref.Kind, ref.ID))
		s.toast(ctx, notify.LevelSuccess, "Foto eliminada.")
		return nil
	})
}

// Photo returns the stored photo of ref, or nil.
func (s *Service) Photo(ctx context.Context, ref PhotoRef) (*blob.Blob, error) {
	return s.blobs.Get(ctx, blob.Photos, ref.Key())
}

// PhotoFile is one file offered to ImportPhotos.
type PhotoFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// PhotoImportResult counts the outcome of a photo import or restore.
type PhotoImportResult struct {
	Imported int
	// Failed counts files with an unknown key, too large or unreadable.
	Failed int
}

// ImportPhotos attaches each file to the inventory item whose key is the
// file name without extension. Failures are counted, not returned.
func (s *Service) ImportPhotos(ctx context.Context, files []PhotoFile) (*PhotoImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(ctx); err != nil {
		return nil, err
	}
	st := s.st
	if len(st.Inventory) == 0 {
		s.toast(ctx, notify.LevelError, "Carga un inventario antes de importar fotos.")
		return nil, ErrEmptyInventory
	}

	res := &PhotoImportResult{}
	for i, f := range files {
		s.notifier.Notify(ctx, notify.Notice{
			Kind:    notify.KindProgress,
			Level:   notify.LevelInfo,
			Message: fmt.Sprintf("Procesando %d de %d: %s", i+1, len(files), f.Name),
			Done:    i + 1,
			Total:   len(files),
		})
		base := filepath.Base(f.Name)
		key := strings.TrimSuffix(base, filepath.Ext(base))
		if st.Item(key) == nil {
			s.log.Warn("photo ignored, key not found", "file", f.Name)
			res.Failed++
			continue
		}
		if err := s.importPhoto(ctx, f, key); err != nil {
			s.log.Warn("photo ignored", "file", f.Name, "error", err)
			res.Failed++
			continue
		}
		st.Photos[key] = true
		res.Imported++
	}

	if res.Imported > 0 {
		st.LogActivity(s.clock(), "Fotos importadas", fmt.Sprintf("%d fotos importadas, %d ignoradas.", res.Imported, res.Failed))
		if err := s.saveLocked(ctx); err != nil {
			return res, err
		}
		s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Importación completa: %d fotos guardadas con éxito.", res.Imported))
	}
	if res.Failed > 0 {
		s.toast(ctx, notify.LevelWarning, fmt.Sprintf("%d archivos fueron ignorados (clave no encontrada o archivo muy grande).", res.Failed))
	}
	return res, nil
}

func (s *Service) importPhoto(ctx context.Context, f PhotoFile, key string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	photo, err := imaging.Process(rc, s.photoMaxBytes)
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, blob.Photos, model.PhotoKey(model.PhotoInventory, key), photo.Data, photo.MIME)
}

// RestorePhotos restores the photos/ folder of a session archive, keeping
// only photos whose entity exists in this session.
func (s *Service) RestorePhotos(ctx context.Context, r io.ReaderAt, size int64) (*PhotoImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(ctx); err != nil {
		return nil, err
	}
	st := s.st
	if len(st.Inventory) == 0 {
		s.toast(ctx, notify.LevelError, "Carga un inventario antes de restaurar fotos.")
		return nil, ErrEmptyInventory
	}

	entries, err := archive.ReadPhotos(r, size)
	if err != nil {
		if errors.Is(err, archive.ErrNoPhotos) {
			s.toast(ctx, notify.LevelError, `Error: El archivo .zip no contiene una carpeta "photos" válida.`)
		} else {
			s.toast(ctx, notify.LevelError, "Error al procesar el archivo .zip.")
		}
		return nil, err
	}

	res := &PhotoImportResult{}
	for i, e := range entries {
		s.notifier.Notify(ctx, notify.Notice{
			Kind:    notify.KindProgress,
			Level:   notify.LevelInfo,
			Message: fmt.Sprintf("Restaurando foto %d de %d...", i+1, len(entries)),
			Done:    i + 1,
			Total:   len(entries),
		})
		kind, id, ok := model.ParsePhotoKey(e.Key)
		if !ok || !s.entityExists(st, PhotoRef{Kind: kind, ID: id}) {
			res.Failed++
			continue
		}
		if err := s.blobs.Put(ctx, blob.Photos, e.Key, e.Data, e.ContentType); err != nil {
			s.log.Warn("photo not restored", "key", e.Key, "error", err)
			res.Failed++
			continue
		}
		st.PhotoFlags(kind)[id] = true
		res.Imported++
	}

	if res.Imported > 0 {
		st.LogActivity(s.clock(), "Fotos restauradas", fmt.Sprintf("%d fotos restauradas, %d ignoradas.", res.Imported, res.Failed))
		if err := s.saveLocked(ctx); err != nil {
			return res, err
		}
		s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("%d fotos restauradas y asociadas con éxito.", res.Imported))
	}
	if res.Failed > 0 {
		s.toast(ctx, notify.LevelWarning, fmt.Sprintf("%d fotos del backup fueron ignoradas (claves no encontradas).", res.Failed))
	}
	return res, nil
}

// VerifyPhotos lists photo flags that are set while no blob exists.
func (s *Service) VerifyPhotos(ctx context.Context) ([]PhotoRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var drift []PhotoRef
	for _, kind := range model.PhotoKinds {
		flags := s.st.PhotoFlags(kind)
		ids := make([]string, 0, len(flags))
		for id, set := range flags {
			if set {
				ids = append(ids, id)
			}
		}
		slices.Sort(ids)
		for _, id := range ids {
			ref := PhotoRef{Kind: kind, ID: id}
			ok, err := blob.Exists(ctx, s.blobs, blob.Photos, ref.Key())
			if err != nil {
				return nil, fmt.Errorf("checking %s: %w", ref.Key(), err)
			}
			if !ok {
				drift = append(drift, ref)
			}
		}
	}
	if len(drift) > 0 {
		s.log.Warn("photo flags without blobs", "count", len(drift))
	}
	return drift, nil
}
