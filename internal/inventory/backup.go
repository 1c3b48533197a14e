package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/erazemk/inventario/internal/archive"
	"github.com/erazemk/inventario/internal/notify"
)

// ExportSession writes the session and all blobs as a zip archive to w and
// returns its file name. A final archive opens read-only; the running
// session stays as it is.
func (s *Service) ExportSession(ctx context.Context, w io.Writer, final bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.clock()
	doc, err := s.st.Encode()
	if err != nil {
		return "", err
	}
	res, err := archive.Export(ctx, w, doc, s.blobs, final)
	if err != nil {
		s.log.Error("session export failed", "error", err)
		s.toast(ctx, notify.LevelError, "Error al exportar la sesión.")
		return "", fmt.Errorf("exporting session: %w", err)
	}

	name := archive.FileName(final, at)
	s.log.Info("session exported", "file", name, "photos", res.Photos, "layout_images", res.LayoutImages)
	if !s.st.ReadOnlyMode {
		s.st.LogActivity(at, "Sesión exportada", fmt.Sprintf("Tipo: %s", archive.Mode(final)))
		if err := s.saveLocked(ctx); err != nil {
			return name, err
		}
	}
	if final {
		s.toast(ctx, notify.LevelSuccess, "Sesión finalizada y exportada como .zip")
	} else {
		s.toast(ctx, notify.LevelSuccess, "Sesión exportada como .zip")
	}
	return name, nil
}

// ImportSession restores an archive: blobs first, then the session
// document, which replaces the running session. It works in read-only
// mode and leaves it when the imported session is writable.
func (s *Service) ImportSession(ctx context.Context, r io.ReaderAt, size int64, name string) (*archive.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("importing session", "file", name)
	res, err := archive.Import(ctx, r, size, name, s.blobs, s.notifier, s.log)
	if err != nil {
		s.log.Error("session import failed", "file", name, "error", err)
		if errors.Is(err, archive.ErrMissingState) {
			s.notifier.Notify(ctx, notify.Notice{
				Kind:     notify.KindImportFailed,
				Level:    notify.LevelError,
				Message:  `Error fatal: el archivo no contiene "session.json". La sesión actual no se modificó.`,
				Blocking: true,
			})
		} else {
			s.toast(ctx, notify.LevelError, "Error fatal al importar el archivo de sesión.")
		}
		return nil, fmt.Errorf("importing session: %w", err)
	}
	if err := s.persister.WriteRaw(ctx, res.State); err != nil {
		s.toast(ctx, notify.LevelError, "Error fatal al importar el archivo de sesión.")
		return nil, err
	}
	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}
	if res.Failed > 0 {
		s.toast(ctx, notify.LevelWarning, fmt.Sprintf("%d archivos del respaldo no se pudieron restaurar.", res.Failed))
	}
	s.toast(ctx, notify.LevelSuccess, "Sesión importada con éxito.")
	return res, nil
}
