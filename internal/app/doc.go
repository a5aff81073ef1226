// Package app bootstraps polarizer: it configures logging, loads the
// configuration, opens the mapping and definition stores and wires the
// reconciliation engine, the registration service and the export builder.
//
// # Bootstrap
//
//	application, err := app.NewApplication(app.NewConfig(debug, silent, configPath))
//	if err != nil {
//	    return err
//	}
//	services := application.Services()
//
// A missing configuration file or store aborts the bootstrap.
//
// # Pipeline
//
// Services exposes the steps the commands are built from:
//
//   - Reconcile runs one pass over every definition.
//   - Export reconciles and writes one document per project with queued
//     records into output-dir.
//   - Import exports, delivers each document through the configured
//     transport and merges the ids the remote returns into the mapping.
//   - Watch reruns the reconciliation whenever a store changes on disk.
package app
