// Package watch re-runs a scan whenever matching files below a directory
// change, and periodically as a fallback for file systems without change
// notifications.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

// ScanFunc performs one scan. Errors are logged; watching continues.
type ScanFunc func(ctx context.Context) error

// Options configure a Watcher.
type Options struct {
	// Pattern is matched against changed file names (default "*.pdf").
	Pattern string
	// Debounce delays a scan until changes settle (default 500ms).
	Debounce time.Duration
	// Interval schedules a periodic rescan; zero disables it.
	Interval time.Duration
}

// Watcher monitors a directory tree and serialises scans.
type Watcher struct {
	root      string
	opts      Options
	scan      ScanFunc
	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler
	trigger   chan struct{}
}

// New creates a Watcher for root. Call Run to start it.
func New(root string, scan ScanFunc, opts Options) (*Watcher, error) {
	if opts.Pattern == "" {
		opts.Pattern = "*.pdf"
	}
	if _, err := filepath.Match(opts.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", opts.Pattern, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		root:    absRoot,
		opts:    opts,
		scan:    scan,
		watcher: watcher,
		trigger: make(chan struct{}, 1),
	}, nil
}

// Run performs an initial scan and then rescans on changes until ctx is
// done. The watcher cannot be restarted.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(w.root); err != nil {
		return err
	}

	if w.opts.Interval > 0 {
		if err := w.startScheduler(); err != nil {
			return err
		}
		defer func() {
			if err := w.scheduler.Shutdown(); err != nil {
				slog.Error("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for changes", logfields.Path(w.root), slog.String("pattern", w.opts.Pattern))
	w.runScan(ctx, "initial")

	debounce := time.NewTimer(w.opts.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				debounce.Reset(w.opts.Debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case <-debounce.C:
			w.runScan(ctx, "change")
		case <-w.trigger:
			w.runScan(ctx, "interval")
		}
	}
}

// handleEvent reports whether the event should schedule a scan. Newly
// created directories are added to the watch set.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
			return false
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	matched, _ := filepath.Match(w.opts.Pattern, filepath.Base(event.Name))
	if matched {
		slog.Debug("Change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
	}
	return matched
}

func (w *Watcher) runScan(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	slog.Debug("Running scan", slog.String("reason", reason))
	if err := w.scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("Scan failed", logfields.Error(err))
	}
}

// addTree watches dir and every directory below it; fsnotify is not recursive.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) startScheduler() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.requestScan),
		gocron.WithName("periodic-rescan"),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create periodic rescan job: %w", err)
	}
	w.scheduler = s
	s.Start()
	return nil
}

// requestScan queues a scan unless one is already pending.
func (w *Watcher) requestScan() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}
