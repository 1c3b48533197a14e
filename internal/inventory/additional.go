package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

// AdditionalInput holds the editable fields of an additional item.
type AdditionalInput struct {
	Description string
	OriginalKey string
	Brand       string
	Model       string
	Serial      string
	Area        string
	Personal    bool
}

func (in *AdditionalInput) trim() {
	in.Description = strings.TrimSpace(in.Description)
	in.OriginalKey = strings.TrimSpace(in.OriginalKey)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Serial = strings.TrimSpace(in.Serial)
	in.Area = strings.TrimSpace(in.Area)
}

// PhotoRef names the photo of one entity.
type PhotoRef struct {
	Kind model.PhotoKind
	ID   string
}

// Key is the blob key of the photo.
func (r PhotoRef) Key() string { return model.PhotoKey(r.Kind, r.ID) }

// AddAdditional registers an item found on site under the active
// custodian. A serial or key already known is refused unless force is set.
// Personal items wait for SetEntryForm.
func (s *Service) AddAdditional(ctx context.Context, in AdditionalInput, force bool) (*model.AdditionalItem, error) {
	in.trim()
	if in.Description == "" {
		s.toast(ctx, notify.LevelError, "La descripción es obligatoria.")
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	var added model.AdditionalItem
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		c := st.Active()
		if c == nil {
			s.toast(ctx, notify.LevelError, "Debe activar un usuario para registrar bienes.")
			return ErrNoActiveCustodian
		}
		if !force {
			for _, v := range []string{in.Serial, in.OriginalKey} {
				if st.HasSerial(v) {
					s.toast(ctx, notify.LevelWarning, "Advertencia: Esa serie/clave ya existe en el inventario.")
					return fmt.Errorf("%w: %q", ErrDuplicateSerial, v)
				}
			}
		}
		added = model.AdditionalItem{
			ID:           s.newID(),
			Description:  in.Description,
			OriginalKey:  in.OriginalKey,
			Brand:        in.Brand,
			Model:        in.Model,
			Serial:       in.Serial,
			Area:         in.Area,
			Custodian:    c.Name,
			Personal:     in.Personal,
			RegisteredAt: at,
		}
		st.AdditionalItems = append(st.AdditionalItems, added)
		st.RebuildSerialCache()
		st.LogActivity(at, "Bien adicional registrado", fmt.Sprintf("Descripción: %s, Usuario: %s", added.Description, added.Custodian))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.toast(ctx, notify.LevelSuccess, "Bien adicional registrado.")
	return &added, nil
}

// SetEntryForm records whether a personal item came with entry paperwork.
func (s *Service) SetEntryForm(ctx context.Context, id string, has bool) error {
	return s.mutate(ctx, func(st *state.State, at time.Time) error {
		a := st.Additional(id)
		if a == nil {
			return fmt.Errorf("additional item %s: %w", id, ErrNotFound)
		}
		if !a.Personal {
			return fmt.Errorf("%w: item %s is not personal", ErrInvalidInput, id)
		}
		a.HasEntryForm = &has
		answer := "No"
		if has {
			answer = "Sí"
		}
		st.LogActivity(at, "Formato de entrada", fmt.Sprintf("ID: %s, Tiene formato: %s", id, answer))
		return nil
	})
}

// EditAdditional replaces the editable fields of an additional item.
func (s *Service) EditAdditional(ctx context.Context, id string, in AdditionalInput) (*model.AdditionalItem, error) {
	in.trim()
	if in.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	var edited model.AdditionalItem
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		a := st.Additional(id)
		if a == nil {
			return fmt.Errorf("additional item %s: %w", id, ErrNotFound)
		}
		a.Description = in.Description
		a.OriginalKey = in.OriginalKey
		a.Brand = in.Brand
		a.Model = in.Model
		a.Serial = in.Serial
		a.Area = in.Area
		if a.Personal != in.Personal {
			a.Personal = in.Personal
			a.HasEntryForm = nil
		}
		st.RebuildSerialCache()
		st.LogActivity(at, "Bien adicional editado", fmt.Sprintf("ID: %s", id))
		edited = *a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.toast(ctx, notify.LevelSuccess, "Bien adicional actualizado.")
	return &edited, nil
}

// DeleteAdditional removes an additional item. When transferTo is set and
// the item has a photo, the photo is copied to that entity first and the
// original blob is kept.
func (s *Service) DeleteAdditional(ctx context.Context, id string, transferTo *PhotoRef) error {
	return s.mutate(ctx, func(st *state.State, at time.Time) error {
		a := st.Additional(id)
		if a == nil {
			return fmt.Errorf("additional item %s: %w", id, ErrNotFound)
		}
		src := PhotoRef{Kind: model.PhotoAdditional, ID: id}

		transferred := false
		if transferTo != nil && st.AdditionalPhotos[id] {
			if !s.entityExists(st, *transferTo) {
				return fmt.Errorf("photo target %s: %w", transferTo.Key(), ErrNotFound)
			}
			ok, err := blob.Copy(ctx, s.blobs, blob.Photos, src.Key(), transferTo.Key())
			if err != nil {
				return fmt.Errorf("transferring photo: %w", err)
			}
			if ok {
				st.PhotoFlags(transferTo.Kind)[transferTo.ID] = true
				transferred = true
			}
		}
		if !transferred {
			if _, err := s.blobs.Delete(ctx, blob.Photos, src.Key()); err != nil {
				s.log.Warn("failed to delete photo", "key", src.Key(), "error", err)
			}
		}

		desc := a.Description
		kept := st.AdditionalItems[:0]
		for _, it := range st.AdditionalItems {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		st.AdditionalItems = kept
		delete(st.AdditionalPhotos, id)
		st.RebuildSerialCache()
		st.LogActivity(at, "Bien adicional eliminado", fmt.Sprintf("Descripción: %s", desc))
		s.toast(ctx, notify.LevelSuccess, "Bien adicional eliminado.")
		return nil
	})
}

// AssignKey gives an additional item an inventory key. A key already
// known to the session is refused.
func (s *Service) AssignKey(ctx context.Context, id, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidInput)
	}
	return s.mutate(ctx, func(st *state.State, at time.Time) error {
		a := st.Additional(id)
		if a == nil {
			return fmt.Errorf("additional item %s: %w", id, ErrNotFound)
		}
		if st.HasSerial(key) {
			s.toast(ctx, notify.LevelError, "Error: Esa clave/serie ya existe.")
			return fmt.Errorf("%w: %q", ErrDuplicateSerial, key)
		}
		a.AssignedKey = key
		st.RebuildSerialCache()
		st.LogActivity(at, "Clave Asignada a Bien Adicional", fmt.Sprintf("ID: %s, Clave: %s", id, key))
		s.toast(ctx, notify.LevelSuccess, "Clave actualizada.")
		return nil
	})
}
