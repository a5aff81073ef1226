package reconciler

import (
	"context"
	"errors"
	"fmt"

	"polarizer/pkg/logging"
)

// Classify maps the emptiness of the two ids to a State.
func Classify(mapID, metaID string) State {
	switch {
	case mapID != "" && metaID != "":
		return StateBothSet
	case mapID != "":
		return StateMetaMissing
	case metaID != "":
		return StateMapMissing
	default:
		return StateBothMissing
	}
}

// Engine reconciles the mapping store with the definition side of each pair.
//
// It is the single place where the two stores are healed when they drift apart.
// Reconciling an unchanged pair twice changes nothing the second time.
type Engine struct {
	mapping     MappingStore
	definitions DefinitionStore
	queue       *ImportQueue
	metrics     *Metrics
}

// NewEngine creates an engine. definitions may be nil when every request
// carries an inline record; metrics may be nil.
func NewEngine(mappingStore MappingStore, definitions DefinitionStore, queue *ImportQueue, metrics *Metrics) *Engine {
	if queue == nil {
		queue = NewImportQueue()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Engine{
		mapping:     mappingStore,
		definitions: definitions,
		queue:       queue,
		metrics:     metrics,
	}
}

// Queue returns the import queue the engine appends to.
func (e *Engine) Queue() *ImportQueue {
	return e.queue
}

// Metrics returns the engine's metrics.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Reconcile classifies one pair and applies the corrective action.
//
// A mismatch is reported in the Result and logged; it is not an error. The
// returned error is limited to failures persisting a propagated id.
func (e *Engine) Reconcile(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if req.Record == nil {
		return Result{}, fmt.Errorf("reconcile %s/%s: record cannot be nil", req.Identity, req.Project)
	}

	var mapID string
	if entry, ok := e.mapping.Get(req.Identity, req.Project); ok {
		mapID = entry.ID
	}
	metaID := req.Record.ID

	result := Result{
		Identity: req.Identity,
		Project:  req.Project,
		State:    Classify(mapID, metaID),
		Action:   ActionNone,
	}
	e.metrics.RecordState(result.State)

	switch result.State {
	case StateBothSet:
		if mapID != metaID {
			result.Action = ActionReportMismatch
			result.Mismatch = &IdentifierMismatchError{
				Identity:     req.Identity,
				Project:      req.Project,
				MappingID:    mapID,
				DefinitionID: metaID,
			}
			e.metrics.RecordMismatch()
			logging.Error("Reconciler", result.Mismatch, "Mapping and definition disagree for %s/%s, resolve by hand",
				req.Identity, req.Project)
		}

	case StateMetaMissing:
		result.Action = ActionPropagateToDefinition
		req.Record.ID = mapID
		if req.Persisted && e.definitions != nil {
			if err := e.definitions.SetID(req.definitionKey(), req.Project, mapID); err != nil {
				e.metrics.RecordFailure()
				return result, fmt.Errorf("failed to write id %s into definition %s/%s: %w", mapID, req.Identity, req.Project, err)
			}
		}
		logging.Info("Reconciler", "Copied mapping id %s into definition %s/%s", mapID, req.Identity, req.Project)

	case StateMapMissing:
		result.Action = ActionPropagateToMapping
		if err := e.writeMappingID(req, metaID); err != nil {
			e.metrics.RecordFailure()
			return result, fmt.Errorf("failed to write id %s into mapping %s/%s: %w", metaID, req.Identity, req.Project, err)
		}
		logging.Info("Reconciler", "Copied definition id %s into mapping %s/%s", metaID, req.Identity, req.Project)

	case StateBothMissing:
		result.Action = ActionEnqueue
		e.enqueue(req)
		result.Queued = true
		logging.Info("Reconciler", "Queued %s/%s for first import", req.Identity, req.Project)
	}

	if req.Update && !result.Queued {
		e.enqueue(req)
		result.Queued = true
		logging.Info("Reconciler", "Queued %s/%s for forced re-export", req.Identity, req.Project)
	}

	return result, nil
}

func (r Request) definitionKey() string {
	if r.DefinitionKey != "" {
		return r.DefinitionKey
	}
	return r.Identity
}

func (e *Engine) writeMappingID(req Request, id string) error {
	if _, ok := e.mapping.Get(req.Identity, req.Project); ok {
		return e.mapping.SetID(req.Identity, req.Project, id)
	}
	return e.mapping.Upsert(req.Identity, req.Project, id, req.Record.ParamNames())
}

func (e *Engine) enqueue(req Request) {
	e.queue.Add(req.Identity, req.Record.Clone())
	e.metrics.RecordEnqueue()
}

// ReconcileAll reconciles every request. A failing pair does not stop the
// others; all failures are joined into the returned error.
func (e *Engine) ReconcileAll(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, 0, len(reqs))
	var errs []error
	for _, req := range reqs {
		result, err := e.Reconcile(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				errs = append(errs, ctxErr)
				break
			}
			logging.Error("Reconciler", err, "Reconciliation of %s/%s failed", req.Identity, req.Project)
			errs = append(errs, err)
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}
