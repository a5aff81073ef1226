package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"polarizer/internal/reconciler"
	"polarizer/pkg/logging"
)

// Watch runs a reconciliation pass whenever the mapping file or the
// definitions change, until ctx is cancelled or SIGINT/SIGTERM arrives.
// Every pass reloads both stores first, so edits made by other programs are
// seen.
func (s *Services) Watch(ctx context.Context) error {
	watcher := reconciler.NewWatcher(reconciler.WatcherConfig{
		MappingPath:     s.Config.Mapping,
		DefinitionsPath: s.Config.DefinitionsPath,
	}, s.watchPass, s.Metrics)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// one pass up front so the stores start out consistent
	if _, err := s.Reconcile(ctx); err != nil {
		logging.Warn("Watcher", "Initial reconciliation reported errors: %v", err)
	}

	if err := watcher.Start(ctx); err != nil {
		logging.Error("Watcher", err, "Failed to start watcher")
		return err
	}

	logging.Info("Watcher", "Watching %s and %s. Press Ctrl+C to stop.", s.Config.Mapping, s.Config.DefinitionsPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logging.Info("Watcher", "Interrupted, shutting down")
	case <-ctx.Done():
	}

	return watcher.Stop()
}

func (s *Services) watchPass(ctx context.Context, event reconciler.ChangeEvent) error {
	logging.Debug("Watcher", "%s %s changed (%s)", event.Store, event.FilePath, event.Operation)
	if err := s.Reload(); err != nil {
		return err
	}
	_, err := s.Registry().ReconcileDefinitions(ctx)
	return err
}
