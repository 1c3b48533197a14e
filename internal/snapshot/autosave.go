package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// DefaultAutosaveInterval is used when no interval is configured.
const DefaultAutosaveInterval = 30 * time.Second

// Autosave runs a save function periodically.
type Autosave struct {
	mu        sync.Mutex
	scheduler gocron.Scheduler
	job       gocron.Job
	interval  time.Duration
	save      func(context.Context) error
	log       *slog.Logger
}

// NewAutosave creates a stopped autosave timer around save.
func NewAutosave(save func(context.Context) error, log *slog.Logger) (*Autosave, error) {
	if log == nil {
		log = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating autosave scheduler: %w", err)
	}
	s.Start()
	return &Autosave{scheduler: s, save: save, log: log}, nil
}

// Start (re)schedules the timer. Any previous schedule is cancelled first.
// A non-positive interval means DefaultAutosaveInterval.
func (a *Autosave) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.removeLocked(); err != nil {
		return err
	}
	job, err := a.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := a.save(context.Background()); err != nil {
				a.log.Error("autosave failed", "error", err)
				return
			}
			a.log.Debug("progress saved automatically")
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("scheduling autosave: %w", err)
	}
	a.job = job
	a.interval = interval
	a.log.Info("autosave started", "interval", interval)
	return nil
}

// Stop cancels the timer. It is safe to call when not running.
func (a *Autosave) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.removeLocked()
}

func (a *Autosave) removeLocked() error {
	if a.job == nil {
		return nil
	}
	if err := a.scheduler.RemoveJob(a.job.ID()); err != nil {
		return fmt.Errorf("removing autosave job: %w", err)
	}
	a.job = nil
	a.log.Info("autosave stopped")
	return nil
}

// Running reports whether the timer is scheduled.
func (a *Autosave) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.job != nil
}

// Interval returns the current interval, or zero when stopped.
func (a *Autosave) Interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.job == nil {
		return 0
	}
	return a.interval
}

// LastInterval returns the most recent interval passed to Start, even when
// stopped.
func (a *Autosave) LastInterval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

// Shutdown stops the timer and the underlying scheduler.
func (a *Autosave) Shutdown() error {
	if err := a.Stop(); err != nil {
		return err
	}
	return a.scheduler.Shutdown()
}
