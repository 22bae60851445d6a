// Package watcher subscribes to file system events for one workspace root and
// classifies them. Coalescing and scheduling happen upstream in the indexer;
// the watcher only filters, classifies, and forwards.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Op is the classified file system operation.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

// String returns the lowercase operation name, for logging.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	}
	return "unknown"
}

// Event is one classified change under the watched root.
type Event struct {
	Path string // absolute
	Op   Op
}

// IgnoreChecker is used by the watcher to filter paths that never index.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher provides recursive file system watching for a workspace root.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	ignore    IgnoreChecker
	rootDir   string
	events    chan Event
	logger    *slog.Logger
}

// New creates a recursive watcher on rootDir, registering every non-ignored
// subdirectory.
func New(rootDir string, ignore IgnoreChecker, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		ignore:    ignore,
		rootDir:   rootDir,
		events:    make(chan Event, 256),
		logger:    logger,
	}

	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && ignore.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel of classified change events. The channel is
// closed when the watcher shuts down.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start listens for file system events until the watcher is closed.
// Call in a goroutine.
func (w *Watcher) Start() {
	defer close(w.events)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// Non-fatal: a missed event heals on the next refresh pass.
			w.logger.Warn("watcher error", "root", w.rootDir, "error", err)
		}
	}
}

// handleEvent classifies a single fsnotify event and forwards it.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A newly created directory needs its own watch before files land in it.
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.ignore.ShouldIgnoreDir(path) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
				// The directory's contents arrive as their own events, but a
				// rename-into-place may not; forward so a pass gets scheduled.
				w.events <- Event{Path: path, Op: OpCreate}
			}
			return
		}
	}

	if w.ignore.ShouldIgnore(path) {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.events <- Event{Path: path, Op: op}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
