package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"jobtree/pkg/loader"
)

// Watcher observes a .jobtree snapshot directory and invokes a callback
// when the snapshot files change. Events are debounced so that a writer
// rewriting several files produces one reload.
type Watcher struct {
	dir      string
	onChange func()
	debounce *Debouncer
	logger   *slog.Logger
}

// New creates a watcher for the snapshot directory under root. The
// onChange callback runs on the watcher goroutine after each debounced
// batch of events.
func New(root string, debounce time.Duration, onChange func(), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      loader.Dir(root),
		onChange: onChange,
		debounce: NewDebouncer(debounce),
		logger:   logger,
	}
}

// Watch blocks until ctx is cancelled, reporting snapshot changes
// through the callback. The snapshot directory must exist.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	defer w.debounce.Cancel()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Debug("watching snapshot directory", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !snapshotFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("snapshot changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			w.debounce.Trigger(w.onChange)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// snapshotFile reports whether a path names one of the snapshot files
// we reload on. Editors and SQLite drop temp files alongside them.
func snapshotFile(path string) bool {
	switch filepath.Base(path) {
	case loader.GroupsFile, loader.JobsFile, loader.DBFile:
		return true
	}
	return false
}
