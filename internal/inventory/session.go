package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

// LoginMode decides what happens when another operator's session is found.
type LoginMode int

// Login modes.
const (
	// LoginDefault refuses to take over another operator's session.
	LoginDefault LoginMode = iota
	// LoginContinue takes over the session as is.
	LoginContinue
	// LoginReset discards the session and starts a new one.
	LoginReset
)

// Login authenticates operator number against the verifier table.
func (s *Service) Login(ctx context.Context, number string, mode LoginMode) (model.Operator, error) {
	op, ok := model.LookupOperator(number)
	if !ok {
		s.toast(ctx, notify.LevelError, "Número de empleado no autorizado.")
		return model.Operator{}, fmt.Errorf("%w: %q", ErrUnknownOperator, number)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st
	at := s.clock()

	if st.CurrentUser != nil && st.CurrentUser.Number != op.Number && st.HasData() {
		switch mode {
		case LoginContinue:
			st.LoggedIn = true
			st.CurrentUser = &op
			st.LogActivity(at, "Cambio de usuario", fmt.Sprintf("Sesión continuada por %s.", op.Name))
			s.log.Info("session taken over", "operator", op.Number)
			s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Bienvenido de nuevo, %s.", op.Name))
			return op, s.saveLocked(ctx)
		case LoginReset:
			st.CurrentUser = &op
			return op, s.resetLocked(ctx)
		default:
			return model.Operator{}, fmt.Errorf("%w: started by %s", ErrOperatorMismatch, st.CurrentUser.Name)
		}
	}

	st.LoggedIn = true
	st.CurrentUser = &op
	if st.SessionStartTime == nil {
		st.SessionStartTime = &at
		st.LogActivity(at, "Inicio de sesión", fmt.Sprintf("Usuario %s ha iniciado sesión.", op.Name))
	} else {
		st.LogActivity(at, "Reanudación de sesión", fmt.Sprintf("Usuario %s ha reanudado la sesión.", op.Name))
	}
	s.log.Info("operator logged in", "operator", op.Number)
	s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Bienvenido, %s", op.Name))
	return op, s.saveLocked(ctx)
}

// Logout ends the operator's session. The data stays.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st
	if !st.LoggedIn {
		return nil
	}
	name := ""
	if st.CurrentUser != nil {
		name = st.CurrentUser.Name
	}
	st.LogActivity(s.clock(), "Cierre de sesión", fmt.Sprintf("Usuario %s ha salido.", name))
	st.LoggedIn = false
	return s.saveLocked(ctx)
}

// ResetSession discards all audit work and every stored blob, keeping only
// the operator and theme. It also leaves read-only mode.
func (s *Service) ResetSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.CurrentUser == nil {
		return ErrNotLoggedIn
	}
	return s.resetLocked(ctx)
}

func (s *Service) resetLocked(ctx context.Context) error {
	at := s.clock()
	s.st.Reset(at)
	s.st.RebuildSerialCache()
	s.undo = nil

	if err := blob.DropAll(ctx, s.blobs, s.log); err != nil {
		s.log.Error("failed to drop blob store", "error", err)
		s.toast(ctx, notify.LevelError, "No se pudo reiniciar la base de datos de fotos.")
		return fmt.Errorf("dropping blobs: %w", err)
	}

	s.st.LogActivity(at, "Sesión reiniciada", "Se ha iniciado un nuevo inventario.")
	s.log.Info("session reset")
	if err := s.saveLocked(ctx); err != nil {
		return err
	}
	s.resumeAutosaveLocked()
	s.toast(ctx, notify.LevelInfo, "Se ha iniciado un nuevo inventario.")
	return nil
}

// SetTheme records the operator's display theme.
func (s *Service) SetTheme(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("%w: theme must be light or dark", ErrInvalidInput)
	}
	return s.mutate(ctx, func(st *state.State, _ time.Time) error {
		st.Theme = theme
		return nil
	})
}
