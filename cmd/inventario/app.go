package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/config"
	"github.com/erazemk/inventario/internal/db"
	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/snapshot"
	"github.com/erazemk/inventario/internal/store"
)

// globalFlags are the persistent flags of one command tree.
type globalFlags struct {
	cfgFile string
	verbose bool
	yes     bool
}

// app holds what outlives a single command: the loaded configuration, the
// open stores and the session service.
type app struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	cfg *config.Config
	svc *inventory.Service
	// settings is the sqlite handle used for operator preferences, or nil
	// when the snapshot store is not sqlite.
	settings *sql.DB

	// baseYes comes from the command line that started the process; lineYes
	// from the command being run.
	baseYes bool
	lineYes bool

	// lines carries stdin while the shell owns it.
	lines <-chan string

	closers  []func() error
	closeLog func()
}

func newApp() *app {
	return &app{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

func execute(ctx context.Context, args []string) int {
	a := newApp()
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return 1
	}
	return 0
}

// init loads the configuration and opens the session. It runs once per
// process; later calls are no-ops.
func (a *app) init(ctx context.Context, flags globalFlags) error {
	a.lineYes = flags.yes
	if a.svc != nil {
		return nil
	}
	a.baseYes = flags.yes

	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := parseLevel(cfg.Log.Level)
	if flags.verbose {
		level = slog.LevelDebug
	}
	closeLog, err := setupLogger(level, cfg.Log.File)
	if err != nil {
		return err
	}
	a.closeLog = closeLog

	snaps, closeSnaps, err := snapshot.Open(ctx, snapshot.Options{
		Driver:      snapshot.Driver(cfg.Snapshot.Driver),
		SQLitePath:  cfg.Snapshot.SQLitePath,
		PostgresDSN: cfg.Snapshot.PostgresDSN,
		Key:         cfg.Snapshot.Key,
		MaxBytes:    cfg.Snapshot.MaxBytes,
	})
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	a.closers = append(a.closers, closeSnaps)

	blobs, closeBlobs, err := blob.Open(ctx, blob.Options{
		Driver:     blob.Driver(cfg.Blob.Driver),
		SQLitePath: cfg.Blob.SQLitePath,
		FSRoot:     cfg.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:    cfg.Blob.S3.Bucket,
			Region:    cfg.Blob.S3.Region,
			Endpoint:  cfg.Blob.S3.Endpoint,
			PathStyle: cfg.Blob.S3.PathStyle,
			Prefix:    cfg.Blob.S3.Prefix,
		},
	})
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}
	a.closers = append(a.closers, closeBlobs)

	if snapshot.Driver(cfg.Snapshot.Driver) == snapshot.DriverSQLite {
		settings, err := db.Open(cfg.Snapshot.SQLitePath)
		if err != nil {
			return fmt.Errorf("opening settings: %w", err)
		}
		a.settings = settings
		a.closers = append(a.closers, settings.Close)
	}

	var notifier notify.Notifier = console{out: a.out, errOut: a.errOut}
	if flags.verbose {
		notifier = notify.Fanout{notifier, notify.Logger{Log: slog.Default()}}
	}
	svc, err := inventory.New(ctx, inventory.Options{
		Snapshots:     snaps,
		Blobs:         blobs,
		Notifier:      notifier,
		Log:           slog.Default(),
		Location:      cfg.Location(),
		PhotoMaxBytes: int64(cfg.Photos.MaxBytes),
		UndoWindow:    cfg.Undo.Window,
		PageSize:      cfg.PageSize,
	})
	if err != nil {
		return err
	}
	a.svc = svc
	slog.Debug("session opened", "snapshot_driver", snaps.Driver(), "blob_driver", blobs.Driver())
	return nil
}

// autosaveInterval is the stored operator preference, else the configured
// default.
func (a *app) autosaveInterval(ctx context.Context) time.Duration {
	if a.settings != nil {
		value, ok, err := store.GetSetting(ctx, a.settings, store.SettingAutosaveInterval)
		if err != nil {
			slog.Warn("failed to read autosave setting", "error", err)
		} else if ok {
			if d, err := time.ParseDuration(value); err == nil && d > 0 {
				return d
			}
			slog.Warn("ignoring invalid autosave setting", "value", value)
		}
	}
	return a.cfg.Autosave.Interval
}

func (a *app) setAutosaveInterval(ctx context.Context, d time.Duration) error {
	if err := a.svc.SetAutosaveInterval(d); err != nil {
		return err
	}
	if a.settings != nil {
		return store.SetSetting(ctx, a.settings, store.SettingAutosaveInterval, d.String())
	}
	return nil
}

func (a *app) close() {
	if a.svc != nil {
		if err := a.svc.Close(); err != nil {
			slog.Error("failed to stop autosave", "error", err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}

// confirm asks a yes/no question on stdin. -y answers yes.
func (a *app) confirm(question string) bool {
	if a.baseYes || a.lineYes {
		return true
	}
	fmt.Fprintf(a.out, "%s [s/N]: ", question)
	line, ok := a.readLine()
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}

// readLine returns the next line of input. It reports false at the end of
// input.
func (a *app) readLine() (string, bool) {
	if a.lines != nil {
		line, ok := <-a.lines
		return line, ok
	}
	line, err := a.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", false
	}
	return line, true
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// console prints notices for the operator.
type console struct {
	out    io.Writer
	errOut io.Writer
}

func (c console) Notify(_ context.Context, n notify.Notice) {
	switch {
	case n.Blocking:
		fmt.Fprintf(c.errOut, "\n!!! %s\n\n", n.Message)
	case n.Kind == notify.KindProgress:
		fmt.Fprintf(c.out, "  [%d/%d] %s\n", n.Done, n.Total, n.Message)
	default:
		fmt.Fprintf(c.out, "%s %s\n", marker(n.Level), n.Message)
	}
}

func marker(level notify.Level) string {
	switch level {
	case notify.LevelSuccess:
		return "[ok]"
	case notify.LevelWarning:
		return "[!]"
	case notify.LevelError:
		return "[x]"
	default:
		return "[i]"
	}
}
