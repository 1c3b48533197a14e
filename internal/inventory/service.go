// Package inventory applies operator actions to the audit session. Every
// action runs under one lock: it mutates the state, re-derives caches and
// completion flags, and persists the whole snapshot before returning.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/imaging"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/snapshot"
	"github.com/erazemk/inventario/internal/state"
)

// Defaults for zero Options fields.
const (
	DefaultUndoWindow = 5 * time.Second
	DefaultPageSize   = 50
)

// Options configures a Service. Snapshots and Blobs are required.
type Options struct {
	Snapshots snapshot.Store
	Blobs     blob.Store
	// Notifier receives toasts and alerts. It is called with the service
	// lock held and must not call back into the Service.
	Notifier notify.Notifier
	Log      *slog.Logger
	// Location is the display timezone of activity log entries.
	Location      *time.Location
	Now           func() time.Time
	NewID         func() string
	PhotoMaxBytes int64
	UndoWindow    time.Duration
	PageSize      int
}

// Service owns one session.
type Service struct {
	mu sync.Mutex
	st *state.State

	persister *snapshot.Persister
	blobs     blob.Store
	notifier  notify.Notifier
	log       *slog.Logger
	autosave  *snapshot.Autosave

	loc           *time.Location
	now           func() time.Time
	newID         func() string
	photoMaxBytes int64
	undoWindow    time.Duration
	pageSize      int

	undo *deletedCustodian
}

// New loads the stored session, or starts a fresh one.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Snapshots == nil || opts.Blobs == nil {
		return nil, fmt.Errorf("inventory: snapshot and blob stores are required")
	}
	s := &Service{
		blobs:         opts.Blobs,
		notifier:      opts.Notifier,
		log:           opts.Log,
		loc:           opts.Location,
		now:           opts.Now,
		newID:         opts.NewID,
		photoMaxBytes: opts.PhotoMaxBytes,
		undoWindow:    opts.UndoWindow,
		pageSize:      opts.PageSize,
	}
	if s.notifier == nil {
		s.notifier = notify.Discard
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.photoMaxBytes <= 0 {
		s.photoMaxBytes = imaging.DefaultMaxBytes
	}
	if s.undoWindow <= 0 {
		s.undoWindow = DefaultUndoWindow
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	s.persister = snapshot.NewPersister(opts.Snapshots, s.notifier, s.log)

	st, found, err := s.persister.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.st = st
	s.log.Info("session loaded", "found", found, "items", len(st.Inventory), "read_only", st.ReadOnlyMode)
	return s, nil
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// View calls fn with the session under the lock. fn must not retain or
// modify the state.
func (s *Service) View(fn func(st *state.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

// ReadOnly reports whether the session is read-only.
func (s *Service) ReadOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ReadOnlyMode
}

// mutate runs fn under the lock and saves the session when fn succeeds.
func (s *Service) mutate(ctx context.Context, fn func(st *state.State, at time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(ctx); err != nil {
		return err
	}
	if err := fn(s.st, s.clock()); err != nil {
		return err
	}
	return s.saveLocked(ctx)
}

func (s *Service) writableLocked(ctx context.Context) error {
	if s.st.ReadOnlyMode {
		s.toast(ctx, notify.LevelWarning, "Modo de solo lectura: no se pueden realizar acciones.")
		return ErrReadOnly
	}
	if !s.st.LoggedIn {
		return ErrNotLoggedIn
	}
	return nil
}

func (s *Service) saveLocked(ctx context.Context) error {
	return s.persister.Save(ctx, s.st)
}

func (s *Service) toast(ctx context.Context, level notify.Level, msg string) {
	s.notifier.Notify(ctx, notify.Toast(level, msg))
}

// Save persists the session and records the time. It is what autosave
// runs; it is a no-op in read-only mode.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.ReadOnlyMode {
		return nil
	}
	at := s.clock()
	s.st.LastAutosave = &at
	return s.saveLocked(ctx)
}

// StartAutosave starts or restarts periodic saving.
func (s *Service) StartAutosave(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autosave == nil {
		a, err := snapshot.NewAutosave(s.Save, s.log)
		if err != nil {
			return err
		}
		s.autosave = a
		s.persister.AttachAutosave(a)
	}
	if s.st.ReadOnlyMode {
		s.log.Warn("session is read-only, autosave not started")
		return nil
	}
	return s.autosave.Start(interval)
}

// SetAutosaveInterval restarts the autosave timer with interval.
func (s *Service) SetAutosaveInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: autosave interval must be positive", ErrInvalidInput)
	}
	return s.StartAutosave(interval)
}

// AutosaveRunning reports whether the autosave timer is scheduled.
func (s *Service) AutosaveRunning() bool {
	s.mu.Lock()
	a := s.autosave
	s.mu.Unlock()
	return a != nil && a.Running()
}

// resumeAutosaveLocked restarts a stopped timer after the session became
// writable again.
func (s *Service) resumeAutosaveLocked() {
	if s.autosave == nil || s.autosave.Running() || s.st.ReadOnlyMode {
		return
	}
	interval := s.autosave.LastInterval()
	if err := s.autosave.Start(interval); err != nil {
		s.log.Error("failed to restart autosave", "error", err)
	}
}

// Reload replaces the in-memory session with the stored one.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Service) reloadLocked(ctx context.Context) error {
	st, _, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}
	s.st = st
	s.undo = nil
	if st.ReadOnlyMode {
		if s.autosave != nil {
			if err := s.autosave.Stop(); err != nil {
				s.log.Error("failed to stop autosave", "error", err)
			}
		}
	} else {
		s.resumeAutosaveLocked()
	}
	s.log.Info("session reloaded", "items", len(st.Inventory), "read_only", st.ReadOnlyMode)
	return nil
}

// Close stops autosave. It does not save.
func (s *Service) Close() error {
	s.mu.Lock()
	a := s.autosave
	s.autosave = nil
	s.mu.Unlock()
	if a == nil {
		return nil
	}
	return a.Shutdown()
}
