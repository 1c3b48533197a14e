package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

// CloseArea records the hand-over of an area. Its completion flag is
// frozen from then on.
func (s *Service) CloseArea(ctx context.Context, area, responsible, location string) error {
	responsible, location = strings.TrimSpace(responsible), strings.TrimSpace(location)
	if responsible == "" || location == "" {
		s.toast(ctx, notify.LevelError, "Para el Acta de Cierre, el nombre de quien recibe y la ubicación son obligatorios.")
		return fmt.Errorf("%w: responsible and location are required", ErrInvalidInput)
	}
	return s.mutate(ctx, func(st *state.State, at time.Time) error {
		if !slices.Contains(st.Areas(), area) {
			return fmt.Errorf("area %s: %w", area, ErrNotFound)
		}
		if _, closed := st.ClosedAreas[area]; closed {
			return fmt.Errorf("area %s: %w", area, ErrAreaClosed)
		}
		st.ClosedAreas[area] = model.ClosedArea{Responsible: responsible, Location: location, Date: at}
		st.LogActivity(at, "Acta de área cerrada", fmt.Sprintf("Área: %s, Responsable que recibe: %s", area, responsible))
		return nil
	})
}

// SetAreaDirectory sets who is responsible for area.
func (s *Service) SetAreaDirectory(ctx context.Context, area string, entry model.DirectoryEntry) error {
	return s.mutate(ctx, func(st *state.State, at time.Time) error {
		if entry.FullName == "" {
			entry.FullName = st.AreaName(area)
		}
		st.AreaDirectory[area] = entry
		st.LogActivity(at, "Directorio actualizado", fmt.Sprintf("Área: %s, Responsable: %s", area, entry.Name))
		return nil
	})
}

// Areas returns every known area id, sorted.
func (s *Service) Areas() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Areas()
}

// SaveNotes sets the note of each key. An empty note removes it.
func (s *Service) SaveNotes(ctx context.Context, notes map[string]string) error {
	if len(notes) == 0 {
		return ErrEmptySelection
	}
	keys := make([]string, 0, len(notes))
	for k := range notes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		for _, k := range keys {
			if st.Item(k) == nil {
				return fmt.Errorf("item %s: %w", k, ErrNotFound)
			}
		}
		for _, k := range keys {
			if note := strings.TrimSpace(notes[k]); note != "" {
				st.Notes[k] = note
			} else {
				delete(st.Notes, k)
			}
		}
		st.LogActivity(at, "Nota guardada", fmt.Sprintf("Nota para clave(s): %s", strings.Join(keys, ", ")))
		return nil
	})
	if err != nil {
		return err
	}
	s.toast(ctx, notify.LevelSuccess, "Nota(s) guardada(s).")
	return nil
}

// Search returns one page of matching inventory items. A zero page size
// uses the configured default.
func (s *Service) Search(f state.Filter) state.Page {
	if f.PageSize == 0 {
		f.PageSize = s.pageSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Search(f)
}
