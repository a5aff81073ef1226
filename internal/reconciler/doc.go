// Package reconciler keeps the identifier mapping and the test definitions in
// agreement.
//
// # Overview
//
// Every (identity, project) pair has two places where its remote identifier
// can live: the mapping file and the definition record. The Engine classifies
// each pair into one of four states and applies a fixed corrective action:
//
//	mapping id  definition id  state        action
//	set         set            BothSet      report if they differ
//	set         empty          MetaMissing  copy mapping id into definition
//	empty       set            MapMissing   copy definition id into mapping
//	empty       empty          BothMissing  enqueue for first import
//
// A record flagged for update is enqueued regardless of its state.
//
// # Import Queue
//
// ImportQueue groups records pending export by project. Entries keep
// insertion order and a repeated identity replaces the queued record in
// place.
//
// # Watching
//
// Watcher pairs a FilesystemDetector with a pass function so edits to either
// store trigger a new reconciliation pass. Rapid successive writes to the same
// store are debounced into one event.
//
// Example usage:
//
//	engine := reconciler.NewEngine(mappingStore, definitionStore, nil, nil)
//	results, err := engine.ReconcileAll(ctx, requests)
//	if err != nil {
//	    return fmt.Errorf("reconciliation failed: %w", err)
//	}
package reconciler
