package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher drives incremental updates off fsnotify events, debounced and
// coalesced per path before being handed to the Orchestrator (spec.md
// §4.H incremental update). Grounded on the teacher's watcher.go
// (FileWatcher + eventDebouncer: one fsnotify.Watcher, a path->latest-event
// map flushed by an AfterFunc timer), generalized to this module's
// Orchestrator.UpdateFile/RemoveFile instead of MasterIndex's in-place
// mutation methods.
type Watcher struct {
	fsw  *fsnotify.Watcher
	orch *Orchestrator
	root string
	log  *slog.Logger

	debounce time.Duration
	mu       sync.Mutex
	pending  map[string]fsnotify.Op
	timer    *time.Timer
}

// NewWatcher creates a Watcher rooted at root, registering a recursive
// directory watch honoring the same directory blacklist discoverer.Walk
// uses.
func NewWatcher(orch *Orchestrator, root string, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{
		fsw: fsw, orch: orch, root: root, log: log.With("component", "watch"),
		debounce: debounce, pending: make(map[string]fsnotify.Op),
	}
	if err := w.addDirs(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirs(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && defaultDirBlacklist[info.Name()] {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run processes fsnotify events until ctx is done, debouncing per-path so a
// burst of writes to one file collapses into a single UpdateFile call.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.addEvent(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("fsnotify error", "error", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) addEvent(ctx context.Context, ev fsnotify.Event) {
	if info, err := os.Stat(ev.Path); err == nil && info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			_ = w.fsw.Add(ev.Path)
		}
		return
	}
	if _, ok := languageForPath(ev.Path); !ok {
		return
	}

	w.mu.Lock()
	w.pending[ev.Path] = ev.Op
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(ctx) })
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	events := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	for path, op := range events {
		if op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			if err := w.orch.RemoveFile(ctx, path); err != nil {
				w.log.Warn("remove file failed", "path", path, "error", err)
			}
			continue
		}
		if err := w.orch.UpdateFile(ctx, path); err != nil {
			w.log.Warn("update file failed", "path", path, "error", err)
		}
	}
}
