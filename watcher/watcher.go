// Package watcher reruns header generation whenever the source file
// changes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardanlabs/cheddar/logger"
)

// Debounce is how long Run waits for a burst of events to settle
// before calling fn again.
var Debounce = 100 * time.Millisecond

// Run calls fn once and then again after every change to path, until
// ctx is cancelled. Errors returned by fn are logged and do not stop the
// loop.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temporary file are still seen.
func Run(ctx context.Context, path string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	log := logger.With("file", abs)
	run(log, fn)

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("Source changed", "op", ev.Op.String())
			timer = time.After(Debounce)

		case <-timer:
			timer = nil
			run(log, fn)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", "error", err)
		}
	}
}

func run(log *slog.Logger, fn func() error) {
	if err := fn(); err != nil {
		log.Error("Regeneration failed", "error", err)
	}
}
