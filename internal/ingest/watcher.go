package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/docrag/internal/docstore"
	"github.com/yildizm/docrag/internal/logger"
)

// DefaultDebounce is the quiet period after the last change before re-ingesting
const DefaultDebounce = 500 * time.Millisecond

// RunFunc performs one ingestion
type RunFunc func(ctx context.Context) error

// Watcher re-runs ingestion when matching files under a directory change
type Watcher struct {
	root     string
	scanner  *docstore.Scanner
	run      RunFunc
	debounce time.Duration
	log      *logger.Logger
}

// NewWatcher creates a watcher for root. The scanner decides which paths are
// relevant; run is invoked once per burst of changes.
func NewWatcher(root string, scanner *docstore.Scanner, run RunFunc, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		root:     root,
		scanner:  scanner,
		run:      run,
		debounce: DefaultDebounce,
		log:      log,
	}
}

// SetDebounce changes the quiet period
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Watch blocks until ctx is cancelled. Failed runs are logged and watching continues.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			w.log.Debug("failed to close watcher: %v", err)
		}
	}()

	if err := w.addTree(watcher, w.root); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(watcher, event) {
				continue
			}
			w.log.Debug("Change detected: %s %s", event.Op, event.Name)
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("Watcher error: %v", err)

		case <-timer.C:
			pending = false
			if err := w.run(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Error("Re-ingestion failed: %v", err)
			}
		}
	}
}

// relevant reports whether an event should trigger a run. New directories
// are added to the watch list as a side effect.
func (w *Watcher) relevant(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.scanner.Excluded(filepath.Base(event.Name)) {
				return false
			}
			if err := w.addTree(watcher, event.Name); err != nil {
				w.log.Warn("Failed to watch %s: %v", event.Name, err)
			}
			return true
		}
	}
	return w.scanner.Matches(event.Name)
}

// addTree watches dir and every non-excluded directory below it
func (w *Watcher) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.scanner.Excluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
