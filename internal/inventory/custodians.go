package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

// CustodianInput holds the editable fields of a custodian. On create,
// Location is the base location ("OFICINA"); on edit it is the full label
// ("OFICINA 03").
type CustodianInput struct {
	Name     string
	Area     string
	Location string
}

func (in *CustodianInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Area = strings.TrimSpace(in.Area)
	in.Location = strings.TrimSpace(in.Location)
}

type deletedCustodian struct {
	custodian model.Custodian
	index     int
	expires   time.Time
}

// CreateCustodian registers a custodian at the next free number of its
// location and makes them active. A name already in use is refused unless
// force is set.
func (s *Service) CreateCustodian(ctx context.Context, in CustodianInput, force bool) (*model.Custodian, error) {
	in.trim()
	if in.Name == "" || in.Area == "" || in.Location == "" {
		s.toast(ctx, notify.LevelError, "Todos los campos son obligatorios")
		return nil, fmt.Errorf("%w: name, area and location are required", ErrInvalidInput)
	}

	var created model.Custodian
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		if !force && st.CustodianByName(in.Name) != nil {
			return fmt.Errorf("%w: %q", ErrDuplicateCustodian, in.Name)
		}
		st.Locations[in.Location]++
		seq := st.Locations[in.Location]
		created = model.Custodian{
			ID:             s.newID(),
			Name:           in.Name,
			Area:           in.Area,
			Location:       in.Location,
			LocationSeq:    seq,
			LocationWithID: model.LocationLabel(in.Location, seq),
		}
		st.Custodians = append(st.Custodians, created)
		st.ActiveCustodian = created.ID
		st.LogActivity(at, "Usuario creado", fmt.Sprintf("Nombre: %s, Área: %s, Ubicación: %s", created.Name, created.Area, created.LocationWithID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("custodian created", "id", created.ID, "location", created.LocationWithID)
	s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Usuario %s creado y activado.", created.Name))
	return &created, nil
}

// EditCustodian updates a custodian. A rename is carried to every item
// assigned under the old name.
func (s *Service) EditCustodian(ctx context.Context, id string, in CustodianInput) (*model.Custodian, error) {
	in.trim()
	if in.Name == "" {
		s.toast(ctx, notify.LevelError, "El nombre no puede estar vacío.")
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	var edited model.Custodian
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		c := st.Custodian(id)
		if c == nil {
			return fmt.Errorf("custodian %s: %w", id, ErrNotFound)
		}
		oldName := c.Name
		c.Name = in.Name
		if in.Area != "" {
			c.Area = in.Area
		}
		if in.Location != "" {
			c.LocationWithID = in.Location
			c.Location = model.LocationBase(in.Location)
			seq, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(in.Location, c.Location)))
			if err != nil {
				seq = 0
			}
			c.LocationSeq = seq
		}
		st.RenameCustodian(oldName, c.Name)
		for i := range st.Inventory {
			it := &st.Inventory[i]
			if it.Located.Bool() && it.Custodian == c.Name {
				it.AreaMismatch = it.Area != c.Area
			}
		}
		st.RebuildSerialCache()
		st.LogActivity(at, "Usuario editado", fmt.Sprintf("Nombre anterior: %s, Nombre nuevo: %s", oldName, c.Name))
		edited = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.toast(ctx, notify.LevelSuccess, "Usuario actualizado.")
	return &edited, nil
}

// DeleteCustodian removes a custodian. Items keep the name they were
// assigned under. The deletion can be undone within the undo window.
func (s *Service) DeleteCustodian(ctx context.Context, id string) error {
	var removed model.Custodian
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		c, idx, ok := st.RemoveCustodian(id)
		if !ok {
			return fmt.Errorf("custodian %s: %w", id, ErrNotFound)
		}
		removed = c
		s.undo = &deletedCustodian{custodian: c, index: idx, expires: at.Add(s.undoWindow)}
		st.LogActivity(at, "Usuario eliminado", fmt.Sprintf("Nombre: %s", c.Name))
		return nil
	})
	if err != nil {
		return err
	}
	s.toast(ctx, notify.LevelInfo, fmt.Sprintf("Usuario %s eliminado.", removed.Name))
	return nil
}

// UndoDeleteCustodian restores the last deleted custodian at their former
// position.
func (s *Service) UndoDeleteCustodian(ctx context.Context) (*model.Custodian, error) {
	var restored model.Custodian
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		u := s.undo
		if u == nil || at.After(u.expires) {
			s.undo = nil
			return ErrUndoExpired
		}
		s.undo = nil
		st.InsertCustodian(u.custodian, u.index)
		st.LogActivity(at, "Acción deshecha", fmt.Sprintf("Restaurado %s", u.custodian.Name))
		restored = u.custodian
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.toast(ctx, notify.LevelSuccess, "Acción deshecha.")
	return &restored, nil
}

// ActivateCustodian makes id the custodian new assignments go to.
func (s *Service) ActivateCustodian(ctx context.Context, id string) (*model.Custodian, error) {
	var active model.Custodian
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		c := st.Custodian(id)
		if c == nil {
			return fmt.Errorf("custodian %s: %w", id, ErrNotFound)
		}
		st.ActiveCustodian = c.ID
		st.LogActivity(at, "Usuario activado", fmt.Sprintf("Usuario: %s", c.Name))
		active = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.toast(ctx, notify.LevelInfo, fmt.Sprintf("Usuario %s activado.", active.Name))
	return &active, nil
}

// DeactivateCustodian clears the active custodian.
func (s *Service) DeactivateCustodian(ctx context.Context) error {
	return s.mutate(ctx, func(st *state.State, at time.Time) error {
		c := st.Active()
		if c == nil {
			return nil
		}
		st.ActiveCustodian = ""
		st.LogActivity(at, "Usuario desactivado", fmt.Sprintf("Usuario: %s", c.Name))
		s.toast(ctx, notify.LevelInfo, fmt.Sprintf("Usuario %s desactivado.", c.Name))
		return nil
	})
}
