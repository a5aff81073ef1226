package metadata

import (
	"context"
	"errors"
	"fmt"

	"polarizer/internal/definitions"
	"polarizer/internal/introspect"
	"polarizer/internal/mapping"
	"polarizer/internal/reconciler"
	"polarizer/internal/testcase"
	"polarizer/pkg/logging"
)

// ErrNoProjects is returned when a declaration does not name any project and
// its lookup key matches no definition.
var ErrNoProjects = errors.New("declaration names no project")

// MappingStore is the identifier mapping store the service works against.
type MappingStore interface {
	reconciler.MappingStore
	Snapshot() mapping.Mapping
}

// DefinitionStore is the definition store the service reads declarations from.
type DefinitionStore interface {
	reconciler.DefinitionStore
	Lookup(key, project string) (testcase.Record, error)
	Projects(key string) []string
	Entries() []definitions.Entry
}

// Declaration is the metadata attached to one test function.
type Declaration struct {
	// Definition is the inline declaration. It may be nil when Lookup is set.
	Definition *testcase.Definition

	// Lookup is the definition store key to merge under the inline
	// declaration. Empty means no lookup.
	Lookup string
}

// Registration is the outcome of registering one test function.
type Registration struct {
	Identity string
	Params   []string

	// Results holds one entry per project that reached reconciliation.
	Results []reconciler.Result
}

// Options configures a Service.
type Options struct {
	// Mapping is required.
	Mapping MappingStore

	// Definitions is optional. Leave it nil, not a typed nil pointer, when
	// there is no definition store.
	Definitions DefinitionStore

	// Engine reconciles registered pairs. When nil an engine is built over
	// Mapping, Definitions, Queue and Metrics.
	Engine *reconciler.Engine

	Queue   *reconciler.ImportQueue
	Metrics *reconciler.Metrics

	// Introspector resolves functions passed to Register. Defaults to the
	// runtime introspector.
	Introspector introspect.Introspector
}

// Service registers test functions against the two stores and the import
// queue. Build one per process and pass it to every registration.
type Service struct {
	mapping      MappingStore
	definitions  DefinitionStore
	engine       *reconciler.Engine
	introspector introspect.Introspector
}

// New creates a service.
func New(opts Options) (*Service, error) {
	if opts.Mapping == nil {
		return nil, fmt.Errorf("mapping store is required")
	}

	engine := opts.Engine
	if engine == nil {
		var defs reconciler.DefinitionStore
		if opts.Definitions != nil {
			defs = opts.Definitions
		}
		engine = reconciler.NewEngine(opts.Mapping, defs, opts.Queue, opts.Metrics)
	}

	in := opts.Introspector
	if in == nil {
		in = introspect.NewRuntime()
	}

	return &Service{
		mapping:      opts.Mapping,
		definitions:  opts.Definitions,
		engine:       engine,
		introspector: in,
	}, nil
}

// Engine returns the reconciliation engine.
func (s *Service) Engine() *reconciler.Engine {
	return s.engine
}

// Queue returns the import queue.
func (s *Service) Queue() *reconciler.ImportQueue {
	return s.engine.Queue()
}

// Register resolves fn's identity and parameters and registers it.
func (s *Service) Register(ctx context.Context, fn any, decl Declaration) (Registration, error) {
	identity, err := s.introspector.Identity(fn)
	if err != nil {
		return Registration{}, fmt.Errorf("failed to resolve test identity: %w", err)
	}
	params, err := s.introspector.Params(fn)
	if err != nil {
		return Registration{Identity: identity}, fmt.Errorf("failed to resolve parameters of %s: %w", identity, err)
	}
	return s.RegisterIdentity(ctx, identity, params, decl)
}

// RegisterIdentity registers a test whose identity and parameters are known.
//
// Each project of the declaration is handled on its own: a failing project is
// reported in the joined error and the others still reconcile.
func (s *Service) RegisterIdentity(ctx context.Context, identity string, params []string, decl Declaration) (Registration, error) {
	if identity == "" {
		return Registration{}, fmt.Errorf("identity cannot be empty")
	}
	params = stepParams(params)
	reg := Registration{Identity: identity, Params: params}

	if decl.Lookup != "" && s.definitions == nil {
		return reg, fmt.Errorf("lookup of %s requires a definition store", decl.Lookup)
	}

	inline := map[string]testcase.Record{}
	var projects []string
	if decl.Definition != nil {
		for _, rec := range decl.Definition.Records() {
			inline[rec.Project] = rec
			projects = append(projects, rec.Project)
		}
	}
	if len(projects) == 0 && decl.Lookup != "" {
		projects = s.definitions.Projects(decl.Lookup)
		if len(projects) == 0 {
			err := &definitions.LookupMissingError{Key: decl.Lookup}
			logging.Error("Registry", err, "Registration of %s aborted", identity)
			return reg, err
		}
	}
	if len(projects) == 0 {
		return reg, fmt.Errorf("%w: %s", ErrNoProjects, identity)
	}

	var errs []error
	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		rec, persisted, err := s.assemble(decl, inline, project)
		if err != nil {
			logging.Error("Registry", err, "Registration of %s/%s aborted", identity, project)
			errs = append(errs, err)
			continue
		}
		if len(rec.TestSteps) == 0 {
			rec.TestSteps = testcase.StepsFromParams(params)
		}

		if err := s.ensureMapping(identity, project, params); err != nil {
			errs = append(errs, err)
			continue
		}

		result, err := s.engine.Reconcile(ctx, reconciler.Request{
			Identity:      identity,
			Project:       project,
			Record:        &rec,
			Persisted:     persisted,
			DefinitionKey: decl.Lookup,
			Update:        rec.Update,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reg.Results = append(reg.Results, result)
	}

	logging.Debug("Registry", "Registered %s in %d of %d projects", identity, len(reg.Results), len(projects))
	return reg, errors.Join(errs...)
}

// assemble builds the record of one project from the inline declaration and
// the definition store. persisted reports whether the record came from the store.
func (s *Service) assemble(decl Declaration, inline map[string]testcase.Record, project string) (testcase.Record, bool, error) {
	in, hasInline := inline[project]

	rec := in
	persisted := false
	if decl.Lookup != "" {
		file, err := s.definitions.Lookup(decl.Lookup, project)
		if err != nil {
			return testcase.Record{}, false, err
		}
		if hasInline {
			rec = testcase.Merge(in, file)
		} else {
			rec = file
		}
		persisted = true
	}

	rec.Project = project
	return rec.WithDefaults(), persisted, nil
}

// ensureMapping creates the mapping entry of a pair seen for the first time.
func (s *Service) ensureMapping(identity, project string, params []string) error {
	if _, ok := s.mapping.Get(identity, project); ok {
		return nil
	}
	if err := s.mapping.Upsert(identity, project, "", params); err != nil {
		return fmt.Errorf("failed to create mapping entry %s/%s: %w", identity, project, err)
	}
	logging.Info("Registry", "Created mapping entry for %s/%s", identity, project)
	return nil
}

// ReconcileDefinitions reconciles every record of the definition store
// against the mapping store.
func (s *Service) ReconcileDefinitions(ctx context.Context) ([]reconciler.Result, error) {
	if s.definitions == nil {
		return nil, fmt.Errorf("no definition store configured")
	}

	entries := s.definitions.Entries()
	reqs := make([]reconciler.Request, 0, len(entries))
	var errs []error
	for _, entry := range entries {
		rec := entry.Record
		rec.Project = entry.Project
		rec = rec.WithDefaults()

		if err := s.ensureMapping(entry.Identity, entry.Project, rec.ParamNames()); err != nil {
			errs = append(errs, err)
			continue
		}
		reqs = append(reqs, reconciler.Request{
			Identity:  entry.Identity,
			Project:   entry.Project,
			Record:    &rec,
			Persisted: true,
			Update:    rec.Update,
		})
	}

	results, err := s.engine.ReconcileAll(ctx, reqs)
	if err != nil {
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}

// stepParams drops the receiver name and returns a non-nil slice.
func stepParams(params []string) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		if p == testcase.SelfParam || p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
