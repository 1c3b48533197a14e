package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/report"
)

// ExportInventory writes the inventory spreadsheet, optionally limited to
// one area, and returns its file name. It works in read-only mode.
func (s *Service) ExportInventory(ctx context.Context, w io.Writer, area string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := report.Inventory(w, s.st, area); err != nil {
		if errors.Is(err, report.ErrNoData) {
			s.toast(ctx, notify.LevelWarning, "No hay datos para exportar con los filtros actuales.")
		}
		return "", err
	}
	at := s.clock()
	name := report.InventoryFileName(area, at)
	scope := area
	if scope == "" {
		scope = "Todas"
	}
	return name, s.exportedLocked(ctx, name, fmt.Sprintf("Inventario completo (Área: %s)", scope))
}

// ExportLabels writes the label print queue and returns its file name.
func (s *Service) ExportLabels(ctx context.Context, w io.Writer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := report.Labels(w, s.st); err != nil {
		if errors.Is(err, report.ErrNoData) {
			s.toast(ctx, notify.LevelInfo, "No hay bienes que requieran etiqueta.")
		}
		return "", err
	}
	name := report.LabelsFileName(s.clock())
	return name, s.exportedLocked(ctx, name, "Etiquetas")
}

func (s *Service) exportedLocked(ctx context.Context, name, details string) error {
	s.log.Info("spreadsheet exported", "file", name)
	s.toast(ctx, notify.LevelSuccess, "Archivo exportado: "+name)
	if s.st.ReadOnlyMode || !s.st.LoggedIn {
		return nil
	}
	s.st.LogActivity(s.clock(), "Exportación XLSX", details)
	return s.saveLocked(ctx)
}
