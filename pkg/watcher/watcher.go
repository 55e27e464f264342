package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/philipparndt/mtlrelink/internal/logging"
)

// DirWatcher watches a directory tree and reports directories whose matching
// files changed
type DirWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	match    func(name string) bool
	debounce time.Duration
	timers   map[string]*time.Timer
	dirs     map[string]bool
}

// NewDirWatcher creates a new watcher. Only files whose base name satisfies
// match trigger a callback.
func NewDirWatcher(debounce time.Duration, match func(name string) bool) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &DirWatcher{
		watcher:  watcher,
		match:    match,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		dirs:     make(map[string]bool),
	}, nil
}

// AddTree watches root and every directory below it
func (w *DirWatcher) AddTree(root string) error {
	_, err := w.addTree(root)
	return err
}

// addTree returns the directories that were not watched before
func (w *DirWatcher) addTree(root string) ([]string, error) {
	var added []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		ok, err := w.addDir(path)
		if ok {
			added = append(added, path)
		}
		return err
	})
	return added, err
}

func (w *DirWatcher) addDir(dir string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dirs[dir] {
		return false, nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return false, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.dirs[dir] = true
	return true, nil
}

// Dirs returns the number of watched directories
func (w *DirWatcher) Dirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// Start begins watching. callback receives the directory of every changed
// matching file, at most once per debounce interval per directory. The event
// loop ends when ctx is cancelled or the watcher is closed.
func (w *DirWatcher) Start(ctx context.Context, callback func(dir string)) {
	log := logging.Get(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(ctx, event, callback)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Warn("watcher error", "err", err)
			}
		}
	}()
}

func (w *DirWatcher) handleEvent(ctx context.Context, event fsnotify.Event, callback func(string)) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	// New directories join the watch set. Each of them is reported once, since
	// files may have landed there before the watch was added.
	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			added, err := w.addTree(event.Name)
			if err != nil {
				logging.Get(ctx).Warn("failed to watch new directory", "dir", event.Name, "err", err)
			}
			for _, dir := range added {
				w.schedule(ctx, dir, callback)
			}
			return
		}
	}

	if !w.match(filepath.Base(event.Name)) {
		return
	}
	w.schedule(ctx, filepath.Dir(event.Name), callback)
}

// schedule debounces callbacks per directory. A timer removes itself from
// the pending set when it fires.
func (w *DirWatcher) schedule(ctx context.Context, dir string, callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.timers[dir]; exists {
		pending.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.timers[dir] == timer {
			delete(w.timers, dir)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		callback(dir)
	})
	w.timers[dir] = timer
}

// Close stops pending callbacks and the watcher
func (w *DirWatcher) Close() error {
	w.mu.Lock()
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	return w.watcher.Close()
}
