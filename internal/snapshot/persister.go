package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

// StorageExhaustedMessage is the blocking alert shown when a save fails.
const StorageExhaustedMessage = "¡ALERTA! Almacenamiento lleno. No se puede guardar más progreso. La aplicación está en modo de sólo lectura."

// Persister moves the session between a State and a Store.
type Persister struct {
	store    Store
	notifier notify.Notifier
	log      *slog.Logger
	autosave *Autosave
}

// NewPersister wraps store. A nil notifier discards notices.
func NewPersister(store Store, notifier notify.Notifier, log *slog.Logger) *Persister {
	if notifier == nil {
		notifier = notify.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	return &Persister{store: store, notifier: notifier, log: log}
}

// Store returns the underlying store.
func (p *Persister) Store() Store { return p.store }

// AttachAutosave registers the timer to stop when a save fails.
func (p *Persister) AttachAutosave(a *Autosave) { p.autosave = a }

// Load reads the stored session. It reports false with a fresh default
// session when nothing is stored or the stored document is malformed; a
// malformed document is discarded. Only storage failures are returned.
func (p *Persister) Load(ctx context.Context) (*state.State, bool, error) {
	data, err := p.store.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("loading snapshot: %w", err)
	}
	if data == nil {
		return state.Default(), false, nil
	}
	s, err := state.Decode(data)
	if err != nil {
		p.log.Warn("discarding malformed snapshot", "error", err, "bytes", len(data))
		if err := p.store.Clear(ctx); err != nil {
			p.log.Error("failed to clear malformed snapshot", "error", err)
		}
		return state.Default(), false, nil
	}
	return s, true, nil
}

// Save writes s unless it is read-only. Any failure switches s to
// read-only, stops autosave and raises a blocking alert; the session
// cannot be saved again.
func (p *Persister) Save(ctx context.Context, s *state.State) error {
	if s.ReadOnlyMode {
		return nil
	}
	data, err := s.Encode()
	if err == nil {
		err = p.store.Save(ctx, data)
	}
	if err == nil {
		return nil
	}

	s.ReadOnlyMode = true
	p.log.Error("critical error saving state, switching to read-only mode", "error", err)
	if p.autosave != nil {
		if stopErr := p.autosave.Stop(); stopErr != nil {
			p.log.Error("failed to stop autosave", "error", stopErr)
		}
	}
	p.notifier.Notify(ctx, notify.Notice{
		Kind:     notify.KindStorageExhausted,
		Level:    notify.LevelError,
		Message:  StorageExhaustedMessage,
		Blocking: true,
	})
	return fmt.Errorf("saving snapshot: %w", err)
}

// WriteRaw stores data verbatim, bypassing the read-only guard. It is used
// to install an imported session before a reload.
func (p *Persister) WriteRaw(ctx context.Context, data []byte) error {
	if err := p.store.Save(ctx, data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// ReadRaw returns the stored document verbatim, or nil.
func (p *Persister) ReadRaw(ctx context.Context) ([]byte, error) {
	data, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return data, nil
}
