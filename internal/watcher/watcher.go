// Package watcher wraps the orchestrator with a path-debounced fsnotify
// queue: every add/change/unlink event cancels any pending timer for
// that path and reschedules after a stability interval, then invokes
// the matching orchestrator operation and emits a typed Event.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/walk"
	"github.com/solanumlabs/codelens/pkg/types"
)

// DefaultStability is the debounce window: a second event on the same
// path before this elapses cancels and reschedules the timer.
const DefaultStability = 300 * time.Millisecond

// Indexer is the subset of *indexer.Indexer the watcher drives.
type Indexer interface {
	IndexFile(ctx context.Context, absPath string) error
	RemoveFile(absPath string) error
}

// EventKind classifies a processed watcher Event.
type EventKind string

const (
	EventIndexed EventKind = "indexed"
	EventRemoved EventKind = "removed"
	EventError   EventKind = "error"
)

// Event is emitted once per settled path, after the debounce timer
// fires and the matching orchestrator operation has run.
type Event struct {
	Kind EventKind
	Path string
	Err  error
}

// Watcher debounces fsnotify events for one root directory and drives
// Indexer as each path settles.
type Watcher struct {
	root      string
	stability time.Duration
	indexer   Indexer
	fsw       *fsnotify.Watcher
	matcher   *walk.Walker
	log       *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
}

// New builds a Watcher over root. cfg supplies the same include/exclude
// globs index_directory uses, so the watcher never schedules work for a
// path the orchestrator would have skipped anyway.
func New(root string, cfg types.WalkConfig, ix Indexer, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		root:      root,
		stability: DefaultStability,
		indexer:   ix,
		fsw:       fsw,
		matcher:   walk.New(root, cfg),
		log:       log.Named("watcher"),
		timers:    make(map[string]*time.Timer),
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
	}, nil
}

// Events returns the channel of settled-path outcomes. Callers not
// interested in per-event notification may simply never drain it; the
// watcher's correctness does not depend on a subscriber being present,
// since low-level fsnotify errors are logged rather than delivered only
// through this channel.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins watching root and every existing subdirectory, and
// launches the event loop in the background.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addDirectoryRecursive(w.root); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop clears every pending debounce timer and closes the underlying
// fsnotify watcher, then waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	close(w.events)
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Low-level errors (too-many-open-files, etc.) are logged and
			// the loop keeps running; the watcher must survive these even
			// with no error subscriber attached.
			w.log.Warn("fsnotify error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !w.matcher.Matches(rel) {
		return
	}

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		w.debounce(event.Name, func() { w.runIndex(ctx, event.Name) })

	case event.Op&fsnotify.Create == fsnotify.Create:
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirectoryRecursive(event.Name); err != nil {
				w.log.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
		w.debounce(event.Name, func() { w.runIndex(ctx, event.Name) })

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.debounce(event.Name, func() { w.runRemove(event.Name) })
	}
}

// debounce cancels any pending timer for path and schedules fn to run
// after the stability interval. The timer map entry is always cleared
// before fn runs, so a fresh event arriving mid-run schedules cleanly
// rather than colliding with the in-flight timer.
func (w *Watcher) debounce(path string, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, exists := w.timers[path]; exists {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.stability, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		fn()
	})
}

func (w *Watcher) runIndex(ctx context.Context, absPath string) {
	err := w.indexer.IndexFile(ctx, absPath)
	if err != nil {
		w.log.Error("re-index failed", zap.String("path", absPath), zap.Error(err))
		w.emit(Event{Kind: EventError, Path: absPath, Err: err})
		return
	}
	w.log.Debug("re-indexed", zap.String("path", absPath))
	w.emit(Event{Kind: EventIndexed, Path: absPath})
}

func (w *Watcher) runRemove(absPath string) {
	if err := w.indexer.RemoveFile(absPath); err != nil {
		w.log.Error("remove failed", zap.String("path", absPath), zap.Error(err))
		w.emit(Event{Kind: EventError, Path: absPath, Err: err})
		return
	}
	w.log.Debug("removed from index", zap.String("path", absPath))
	w.emit(Event{Kind: EventRemoved, Path: absPath})
}

// emit is non-blocking: a full events channel (no subscriber draining
// it) drops the notification rather than stalling the debounce timer
// goroutine that produced it.
func (w *Watcher) emit(e Event) {
	select {
	case w.events <- e:
	default:
	}
}

func (w *Watcher) addDirectoryRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr == nil && rel != "." && w.matcher.ExcludesDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}
