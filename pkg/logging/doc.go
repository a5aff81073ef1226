// Package logging provides the structured logging used across polarizer.
//
// It is a thin layer over the standard slog package. Every entry carries a
// subsystem attribute so output from the mapping store, the definition store,
// the reconciler and the transports can be filtered independently.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("MappingStore", "Loaded %d identities from %s", n, path)
//	logging.Warn("DefinitionStore", "%d definitions match %s, using the first", n, key)
//	logging.Error("Reconciler", err, "Identifier mismatch for %s/%s", identity, project)
//
// # Subsystems
//
//   - Bootstrap: process start and store initialization
//   - Config: configuration discovery and validation
//   - MappingStore / DefinitionStore: durable store access
//   - Reconciler / ImportQueue: the reconciliation engine and its queue
//   - Registry: the registration façade
//   - Export / Transport: document building and delivery
//   - Watcher: filesystem change detection
//
// When InitForCLI has not been called (for example when the registration
// façade is used from a test binary), warnings and errors are written to
// stderr and lower levels are dropped.
package logging
