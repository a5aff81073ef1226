package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"polarizer/internal/definitions"
	"polarizer/pkg/logging"
)

const defaultDebounceInterval = 500 * time.Millisecond

// FilesystemDetector implements ChangeDetector for the mapping file and the
// definition file or directory.
//
// It uses fsnotify to watch the containing directories, so editors that
// replace a file by renaming over it are still seen.
type FilesystemDetector struct {
	mu sync.RWMutex

	// mappingPath is the cleaned mapping file path
	mappingPath string

	// definitionsPath is the cleaned definition file or directory path
	definitionsPath string

	// definitionsIsDir is true when definitionsPath is a directory
	definitionsIsDir bool

	// watcher is the fsnotify watcher instance
	watcher *fsnotify.Watcher

	// debounceInterval is how long to wait for additional changes
	debounceInterval time.Duration

	// pendingEvents tracks pending debounced events per store
	pendingEvents map[StoreKind]*debounceEntry

	// stopCh signals shutdown
	stopCh chan struct{}

	// done is closed when the event loop has exited
	done chan struct{}

	// running indicates if the detector is active
	running bool
}

// debounceEntry tracks a pending event for debouncing.
type debounceEntry struct {
	event ChangeEvent
	timer *time.Timer
}

// NewFilesystemDetector creates a detector for the given paths. An empty
// path is not watched.
func NewFilesystemDetector(mappingPath, definitionsPath string, debounceInterval time.Duration) *FilesystemDetector {
	if debounceInterval == 0 {
		debounceInterval = defaultDebounceInterval
	}

	d := &FilesystemDetector{
		debounceInterval: debounceInterval,
		pendingEvents:    make(map[StoreKind]*debounceEntry),
		stopCh:           make(chan struct{}),
	}
	if mappingPath != "" {
		d.mappingPath = filepath.Clean(mappingPath)
	}
	if definitionsPath != "" {
		d.definitionsPath = filepath.Clean(definitionsPath)
	}
	return d
}

// Start begins watching for filesystem changes.
func (d *FilesystemDetector) Start(ctx context.Context, changes chan<- ChangeEvent) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.mu.Unlock()
		return err
	}

	d.watcher = watcher
	d.running = true
	d.stopCh = make(chan struct{})
	d.done = make(chan struct{})
	d.mu.Unlock()

	if err := d.setupWatches(watcher); err != nil {
		d.mu.Lock()
		d.running = false
		d.watcher = nil
		d.mu.Unlock()
		_ = watcher.Close()
		return err
	}

	go d.processEvents(ctx, watcher, changes)

	logging.Info("FilesystemDetector", "Started watching %s and %s for changes", d.mappingPath, d.definitionsPath)
	return nil
}

// setupWatches adds a watch on the directory of every configured path.
func (d *FilesystemDetector) setupWatches(watcher *fsnotify.Watcher) error {
	dirs := make(map[string]bool)

	if d.mappingPath != "" {
		dirs[filepath.Dir(d.mappingPath)] = true
	}

	if d.definitionsPath != "" {
		info, err := os.Stat(d.definitionsPath)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.definitionsIsDir = info.IsDir()
		d.mu.Unlock()
		if info.IsDir() {
			dirs[d.definitionsPath] = true
		} else {
			dirs[filepath.Dir(d.definitionsPath)] = true
		}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
		logging.Debug("FilesystemDetector", "Watching directory: %s", dir)
	}
	return nil
}

// processEvents handles filesystem events and generates change events.
func (d *FilesystemDetector) processEvents(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- ChangeEvent) {
	d.mu.RLock()
	stopCh, done := d.stopCh, d.done
	d.mu.RUnlock()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			d.cleanupPendingEvents()
			return

		case <-stopCh:
			d.cleanupPendingEvents()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			d.handleFsEvent(event, changes)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("FilesystemDetector", err, "Filesystem watcher error")
		}
	}
}

// handleFsEvent processes a single filesystem event.
func (d *FilesystemDetector) handleFsEvent(event fsnotify.Event, changes chan<- ChangeEvent) {
	store, ok := d.classifyPath(event.Name)
	if !ok {
		return
	}

	var operation ChangeOperation
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		operation = OperationCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		operation = OperationUpdate
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		operation = OperationDelete
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		// the new name arrives as a create
		operation = OperationDelete
	default:
		return
	}

	d.debounceEvent(ChangeEvent{
		Store:     store,
		Operation: operation,
		Timestamp: time.Now(),
		FilePath:  event.Name,
	}, changes)
}

// classifyPath maps a changed path to the store it belongs to.
func (d *FilesystemDetector) classifyPath(path string) (StoreKind, bool) {
	path = filepath.Clean(path)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.mappingPath != "" && path == d.mappingPath {
		return StoreMapping, true
	}
	if d.definitionsPath == "" {
		return "", false
	}
	if d.definitionsIsDir {
		if filepath.Dir(path) == d.definitionsPath && definitions.IsDefinitionFile(path) {
			return StoreDefinitions, true
		}
		return "", false
	}
	if path == d.definitionsPath {
		return StoreDefinitions, true
	}
	return "", false
}

// debounceEvent coalesces rapid successive changes to one store.
func (d *FilesystemDetector) debounceEvent(event ChangeEvent, changes chan<- ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := event.Store

	if entry, ok := d.pendingEvents[key]; ok {
		entry.timer.Stop()
		event.Operation = mergeOperations(entry.event.Operation, event.Operation)
	}

	timer := time.AfterFunc(d.debounceInterval, func() {
		d.mu.Lock()
		entry, ok := d.pendingEvents[key]
		if ok {
			delete(d.pendingEvents, key)
		}
		d.mu.Unlock()

		if ok {
			select {
			case changes <- entry.event:
				logging.Debug("FilesystemDetector", "Emitted change event: %s %s (%s)",
					entry.event.Operation, entry.event.Store, entry.event.FilePath)
			default:
				logging.Warn("FilesystemDetector", "Change event channel full, dropping event for %s",
					entry.event.Store)
			}
		}
	})

	d.pendingEvents[key] = &debounceEntry{
		event: event,
		timer: timer,
	}
}

// mergeOperations merges two operations into a single logical operation.
func mergeOperations(old, new ChangeOperation) ChangeOperation {
	if old == OperationCreate {
		if new == OperationDelete {
			return OperationDelete
		}
		return OperationCreate
	}

	if old == OperationUpdate && new == OperationDelete {
		return OperationDelete
	}

	return new
}

// cleanupPendingEvents cancels all pending debounce timers.
func (d *FilesystemDetector) cleanupPendingEvents() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, entry := range d.pendingEvents {
		entry.timer.Stop()
	}
	d.pendingEvents = make(map[StoreKind]*debounceEntry)
}

// Stop gracefully stops the filesystem detector and waits for its event
// loop to exit.
func (d *FilesystemDetector) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}

	d.running = false
	close(d.stopCh)
	watcher := d.watcher
	d.watcher = nil
	done := d.done
	d.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			logging.Warn("FilesystemDetector", "Timed out waiting for event loop to exit")
		}
	}

	if watcher != nil {
		if err := watcher.Close(); err != nil {
			logging.Error("FilesystemDetector", err, "Error closing filesystem watcher")
		}
	}

	logging.Info("FilesystemDetector", "Stopped filesystem detector")
	return nil
}
