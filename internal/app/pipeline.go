package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"polarizer/internal/export"
	"polarizer/internal/reconciler"
	"polarizer/internal/transport"
	"polarizer/pkg/logging"
)

// ImportResult is the outcome of delivering one project's document.
type ImportResult struct {
	export.BatchResult

	// Delivered is false when nothing was sent, e.g. because import is
	// disabled or every record was rejected.
	Delivered bool

	// Merged counts the mapping entries updated from the response.
	Merged int

	// Err is the delivery failure, if any.
	Err error
}

// Reconcile runs one reconciliation pass over the definition store.
func (s *Services) Reconcile(ctx context.Context) ([]reconciler.Result, error) {
	results, err := s.Registry().ReconcileDefinitions(ctx)
	if err == nil {
		s.Metrics.RecordPass()
	}
	return results, err
}

// Export reconciles, then writes one document per project with queued
// records into the output directory. Reconciliation failures of single pairs
// are returned joined with nothing else stopping the export.
func (s *Services) Export(ctx context.Context) ([]export.BatchResult, error) {
	_, reconcileErr := s.Reconcile(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batches := s.Queue.Flush()
	if len(batches) == 0 {
		logging.Info("Export", "Nothing queued for export")
		return nil, reconcileErr
	}

	results, err := export.WriteAll(ctx, s.Config.OutputDir, batches, s.Builder)
	if err != nil {
		return nil, errors.Join(reconcileErr, err)
	}
	return results, reconcileErr
}

// Import exports and delivers every written document through tr. Ids the
// remote returns are merged into the mapping and propagated into the
// definitions by a final reconciliation pass. progress, when set, is called
// before each delivery.
func (s *Services) Import(ctx context.Context, tr transport.Transport, progress func(project string)) ([]ImportResult, error) {
	batches, err := s.Export(ctx)
	if err != nil && batches == nil {
		return nil, err
	}
	errs := []error{err}

	results := make([]ImportResult, 0, len(batches))
	if !s.Config.TestCase.Enabled {
		logging.Warn("Transport", "testcase.enabled is false, documents were written but not imported")
		for _, batch := range batches {
			results = append(results, ImportResult{BatchResult: batch})
		}
		return results, errors.Join(errs...)
	}

	merged := 0
	for _, batch := range batches {
		result := ImportResult{BatchResult: batch}
		if batch.Path == "" {
			results = append(results, result)
			continue
		}
		if progress != nil {
			progress(batch.Project)
		}

		result.Merged, result.Err = s.deliver(ctx, tr, batch)
		result.Delivered = result.Err == nil
		if result.Err != nil {
			logging.Error("Transport", result.Err, "Import of %s failed", batch.Project)
			errs = append(errs, result.Err)
		}
		merged += result.Merged
		results = append(results, result)
	}

	if merged > 0 {
		// new ids go from the mapping into the definitions
		if _, err := s.Reconcile(ctx); err != nil {
			errs = append(errs, err)
		}
		s.Queue.Flush()
	}

	return results, errors.Join(errs...)
}

func (s *Services) deliver(ctx context.Context, tr transport.Transport, batch export.BatchResult) (int, error) {
	doc, err := os.ReadFile(batch.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", batch.Path, err)
	}
	mappingJSON, err := s.Mapping().Bytes()
	if err != nil {
		return 0, err
	}
	args, err := s.Config.ImportArgs(batch.Project)
	if err != nil {
		return 0, err
	}

	resp, err := tr.Deliver(ctx, transport.Request{
		Project:      batch.Project,
		Document:     doc,
		DocumentPath: batch.Path,
		Mapping:      mappingJSON,
		Args:         args,
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Mapping) == 0 {
		return 0, nil
	}
	return s.Mapping().Merge(resp.Mapping)
}
