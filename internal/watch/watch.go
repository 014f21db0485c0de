// Package watch re-runs a task whenever files under a set of paths change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher debounces filesystem events and calls a run function after each
// burst of changes.
type Watcher struct {
	paths    []string
	debounce time.Duration
	log      *slog.Logger
}

func New(paths []string, debounce time.Duration, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{paths: paths, debounce: debounce, log: log}
}

// Run calls run once immediately and again after every debounced change,
// until ctx is cancelled. Errors from run are logged, not returned.
func (w *Watcher) Run(ctx context.Context, run func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	for _, p := range w.paths {
		if err := w.add(fw, p); err != nil {
			return err
		}
	}

	w.invoke(ctx, run)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) {
				continue
			}
			// New directories need their own watch.
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.add(fw, ev.Name); err != nil {
						w.log.Warn("watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			w.log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.invoke(ctx, run)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) invoke(ctx context.Context, run func(context.Context) error) {
	if err := run(ctx); err != nil && ctx.Err() == nil {
		w.log.Error("run failed", "error", err)
	}
}

// add watches p; directories are added recursively. A plain file is watched
// through its directory so editors that replace files on save are seen.
func (w *Watcher) add(fw *fsnotify.Watcher, p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("watch %s: %w", p, err)
	}
	if !info.IsDir() {
		return fw.Add(filepath.Dir(p))
	}
	return filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != p && ignored(path) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

// ignored filters hidden entries and editor swap files.
func ignored(p string) bool {
	base := filepath.Base(p)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}
