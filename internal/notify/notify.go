// Package notify carries user-facing notifications (transient toasts,
// blocking alerts, progress) from the state layer to whatever front end
// drives it.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Level is the severity of a notice.
type Level string

// Levels.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Kind identifies notices a front end may want to react to specially.
type Kind string

// Kinds.
const (
	KindToast              Kind = "toast"
	KindProgress           Kind = "progress"
	KindAreaCompleted      Kind = "area_completed"
	KindInventoryCompleted Kind = "inventory_completed"
	KindStorageExhausted   Kind = "storage_exhausted"
	KindImportFailed       Kind = "import_failed"
)

// Notice is one notification.
type Notice struct {
	Kind     Kind
	Level    Level
	Message  string
	Blocking bool

	// Area is set for area completion notices.
	Area string

	// Done and Total are set for progress notices.
	Done, Total int
}

// Notifier receives notices.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notice)

// Notify calls f.
func (f Func) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Discard drops every notice.
var Discard Notifier = Func(func(context.Context, Notice) {})

// Toast builds a transient notice.
func Toast(level Level, msg string) Notice {
	return Notice{Kind: KindToast, Level: level, Message: msg}
}

// Fanout delivers each notice to every notifier in order.
type Fanout []Notifier

// Notify forwards n to every non-nil notifier.
func (f Fanout) Notify(ctx context.Context, n Notice) {
	for _, nt := range f {
		if nt != nil {
			nt.Notify(ctx, n)
		}
	}
}

// Logger writes notices to a slog.Logger.
type Logger struct {
	Log *slog.Logger
}

// Notify logs n at a level matching its severity.
func (l Logger) Notify(ctx context.Context, n Notice) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	attrs := []any{"kind", string(n.Kind)}
	if n.Area != "" {
		attrs = append(attrs, "area", n.Area)
	}
	if n.Total > 0 {
		attrs = append(attrs, "done", n.Done, "total", n.Total)
	}
	switch {
	case n.Level == LevelError || n.Blocking:
		log.ErrorContext(ctx, n.Message, attrs...)
	case n.Level == LevelWarning:
		log.WarnContext(ctx, n.Message, attrs...)
	case n.Kind == KindProgress:
		log.DebugContext(ctx, n.Message, attrs...)
	default:
		log.InfoContext(ctx, n.Message, attrs...)
	}
}

// Recorder keeps every notice it receives. It is meant for tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records n.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Count returns how many notices of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, nt := range r.notices {
		if nt.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets every recorded notice.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
