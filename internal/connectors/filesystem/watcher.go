package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/semdex/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before its change
// is emitted. Editors often produce bursts of writes per save.
const DefaultDebounce = 200 * time.Millisecond

// ChangeType classifies a filesystem change.
type ChangeType int

const (
	// ChangeCreated means a new file appeared.
	ChangeCreated ChangeType = iota

	// ChangeUpdated means an existing file was written.
	ChangeUpdated

	// ChangeRemoved means a file was deleted or renamed away.
	ChangeRemoved
)

// String returns the change type name.
func (t ChangeType) String() string {
	switch t {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one debounced filesystem event.
type Change struct {
	// Path is the affected file's cleaned path.
	Path string

	// Type classifies the change.
	Type ChangeType
}

// Watcher emits debounced change events for matching files under a root
// directory, following new subdirectories as they appear.
type Watcher struct {
	root     string
	loader   *Loader
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timers  map[string]*time.Timer
	fired   chan Change
	closed  bool
}

// NewWatcher creates a watcher for root. The loader decides which files
// are interesting. A non-positive debounce takes DefaultDebounce.
func NewWatcher(root string, loader *Loader, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		loader:   loader,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Watch starts watching and returns the change channel. The channel is
// closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.root)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the root and every existing subdirectory.
	err = filepath.WalkDir(w.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if name := entry.Name(); len(name) > 1 && name[0] == '.' && path != w.root {
			return filepath.SkipDir
		}
		return fsWatcher.Add(path)
	})
	if err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", w.root, err)
	}

	w.mu.Lock()
	w.watcher = fsWatcher
	w.fired = make(chan Change)
	w.mu.Unlock()

	changes := make(chan Change)
	go w.run(ctx, fsWatcher, changes)

	logger.Debug("Watching %s (debounce %s)", w.root, w.debounce)
	return changes, nil
}

// Close stops the watcher. Pending debounce timers are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	for _, timer := range w.timers {
		timer.Stop()
	}

	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// run translates raw fsnotify events into debounced changes.
func (w *Watcher) run(ctx context.Context, fsWatcher *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)

	for {
		select {
		case <-ctx.Done():
			return

		case change := <-w.fired:
			select {
			case changes <- change:
				logger.Debug("Change: %s %s", change.Type, change.Path)
			case <-ctx.Done():
				return
			}

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event, fsWatcher)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleEvent classifies one raw event and schedules its emission.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event, fsWatcher *fsnotify.Watcher) {
	path := filepath.Clean(event.Name)

	// A newly created directory must itself be watched.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := fsWatcher.Add(path); err != nil {
				logger.Warn("Watching new directory %s: %v", path, err)
			}
			return
		}
	}

	if !w.loader.Accepts(path) {
		return
	}

	var changeType ChangeType
	switch {
	case event.Op.Has(fsnotify.Create):
		changeType = ChangeCreated
	case event.Op.Has(fsnotify.Write):
		changeType = ChangeUpdated
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		changeType = ChangeRemoved
	default:
		return
	}

	w.schedule(ctx, path, changeType)
}

// schedule (re)arms the debounce timer for path. Only the last change
// type within the quiet window is emitted.
func (w *Watcher) schedule(ctx context.Context, path string, changeType ChangeType) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		closed := w.closed
		fired := w.fired
		w.mu.Unlock()
		if closed {
			return
		}

		select {
		case fired <- Change{Path: path, Type: changeType}:
		case <-ctx.Done():
		}
	})
}
