// Package watch re-runs a callback whenever a single file changes.
//
// The parent directory is watched rather than the file itself so editors that
// save by writing a temp file and renaming it over the original keep
// triggering. Bursts of events are debounced, and the callback never runs
// concurrently with itself.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"artistdb/internal/logging"
)

// DefaultDebounce is used when a non-positive debounce is given.
const DefaultDebounce = 200 * time.Millisecond

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watcher triggers a callback when path changes.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// New returns a Watcher for path.
func New(path string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logging.NewComponentLogger(logger, "watch"),
	}
}

// Run blocks until ctx is cancelled, calling fn once per debounced burst of
// changes to the watched file. Errors from fn are logged and do not stop the
// watch. Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching registry",
		logging.String(logging.FieldPath, w.path),
		logging.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if filepath.Clean(event.Name) != w.path || event.Op&relevantOps == 0 {
				continue
			}
			w.logger.Debug("registry event", logging.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			logging.WarnWithContext(w.logger, "file watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "a registry change may have been missed"),
				logging.String(logging.FieldErrorHint, "save the registry again to retrigger"))
		case <-timer.C:
			if err := fn(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logging.ErrorWithContext(w.logger, "run after change failed", "watch_run_failed",
					logging.Error(err))
			}
		}
	}
}
