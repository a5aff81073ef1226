package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"polarizer/pkg/logging"
)

// Watcher runs a reconciliation pass every time one of the durable stores
// changes on disk.
//
// Passes run one at a time. Because the stores only write when a value
// actually changes, the write performed by a pass triggers at most one more
// pass, which finds nothing to do.
type Watcher struct {
	mu sync.RWMutex

	// detector emits store changes
	detector ChangeDetector

	// pass is run for every debounced change
	pass PassFunc

	// metrics counts completed passes, may be nil
	metrics *Metrics

	// changeChan receives change events from the detector
	changeChan chan ChangeEvent

	// cancelFunc cancels the watcher's context
	cancelFunc context.CancelFunc

	// wg tracks the event processor
	wg sync.WaitGroup

	// running indicates if the watcher is active
	running bool
}

// NewWatcher creates a watcher backed by a FilesystemDetector.
func NewWatcher(config WatcherConfig, pass PassFunc, metrics *Metrics) *Watcher {
	if config.DebounceInterval == 0 {
		config.DebounceInterval = defaultDebounceInterval
	}
	detector := NewFilesystemDetector(config.MappingPath, config.DefinitionsPath, config.DebounceInterval)
	return NewWatcherWithDetector(detector, pass, metrics)
}

// NewWatcherWithDetector creates a watcher fed by an arbitrary detector.
func NewWatcherWithDetector(detector ChangeDetector, pass PassFunc, metrics *Metrics) *Watcher {
	return &Watcher{
		detector:   detector,
		pass:       pass,
		metrics:    metrics,
		changeChan: make(chan ChangeEvent, 100),
	}
}

// Start begins watching. It returns once the detector is running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if w.pass == nil {
		w.mu.Unlock()
		return fmt.Errorf("watcher requires a pass function")
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.running = true
	w.mu.Unlock()

	if err := w.detector.Start(ctx, w.changeChan); err != nil {
		cancel()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to start change detector: %w", err)
	}

	w.wg.Add(1)
	go w.processChangeEvents(ctx)

	logging.Info("Watcher", "Started watching stores")
	return nil
}

// processChangeEvents runs the pass for every change until ctx is done.
func (w *Watcher) processChangeEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.changeChan:
			w.runPass(ctx, event)
		}
	}
}

func (w *Watcher) runPass(ctx context.Context, event ChangeEvent) {
	start := time.Now()
	logging.Debug("Watcher", "%s change in %s (%s), running reconciliation pass",
		event.Operation, event.Store, event.FilePath)

	if err := w.pass(ctx, event); err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Error("Watcher", err, "Reconciliation pass after %s change failed", event.Store)
		return
	}

	if w.metrics != nil {
		w.metrics.RecordPass()
	}
	logging.Debug("Watcher", "Reconciliation pass finished in %s", time.Since(start))
}

// Stop stops the detector and waits for a running pass to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	cancel := w.cancelFunc
	w.mu.Unlock()

	err := w.detector.Stop()
	cancel()
	w.wg.Wait()

	logging.Info("Watcher", "Stopped watching stores")
	return err
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
