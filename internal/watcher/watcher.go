// Package watcher reports changes to volume source files using fsnotify, with debouncing.
package watcher

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the directories holding volume files and calls onChange with the
// volume name after a file has been created, written or renamed into place.
// Parent directories are watched instead of the files so that editors and tools
// that replace files atomically are still seen.
type Watcher struct {
	files       map[string]string // clean absolute path -> volume name
	onChange    func(volume string)
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a file must be quiet before onChange fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for files, a map from volume name to file path.
func NewWatcher(files map[string]string, onChange func(volume string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		files:       make(map[string]string, len(files)),
		onChange:    onChange,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
		logger:      zap.NewNop(),
	}
	for name, path := range files {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		w.files[filepath.Clean(path)] = name
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Directories returns the watched directories, sorted.
func (w *Watcher) Directories() []string {
	seen := make(map[string]struct{})
	for path := range w.files {
		seen[filepath.Dir(path)] = struct{}{}
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
// Directories that do not exist are an error.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range w.Directories() {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	w.watcher = fsw
	w.started = true
	w.logger.Debug("watcher starting", zap.Strings("directories", w.Directories()), zap.Int("volumes", len(w.files)))
	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name, ok := w.files[filepath.Clean(ev.Name)]
	if !ok {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name), zap.String("volume", name))
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		w.debounceChange(ev.Name, name)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(ev.Name)
	}
}

func (w *Watcher) debounceChange(path, volume string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.logger.Debug("volume file changed (debounced)", zap.String("path", path), zap.String("volume", volume))
		if w.onChange != nil {
			w.onChange(volume)
		}
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
