package app

import (
	"fmt"
	"sync"

	"polarizer/internal/config"
	"polarizer/internal/definitions"
	"polarizer/internal/export"
	"polarizer/internal/mapping"
	"polarizer/internal/reconciler"
	"polarizer/internal/transport"
	"polarizer/pkg/logging"
	"polarizer/pkg/metadata"
)

// Services holds everything the commands work with.
//
// The import queue and the metrics survive a Reload; the stores, the engine
// and the registry are rebuilt over the freshly read files.
type Services struct {
	mu sync.RWMutex

	Config  config.Config
	Queue   *reconciler.ImportQueue
	Metrics *reconciler.Metrics
	Builder *export.Builder

	mapping     *mapping.Store
	definitions *definitions.Store
	registry    *metadata.Service
}

// InitializeServices opens both stores and wires the engine, the registry and
// the export builder.
func InitializeServices(cfg config.Config) (*Services, error) {
	builder, err := export.NewBuilder(export.Options{
		Selector: export.Selector{
			Name:  cfg.TestCase.Selector.Name,
			Value: cfg.TestCase.Selector.Value,
		},
		TitlePrefix: cfg.TestCase.Title.Prefix,
		TitleSuffix: cfg.TestCase.Title.Suffix,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid testcase.title: %w", err)
	}

	s := &Services{
		Config:  cfg,
		Queue:   reconciler.NewImportQueue(),
		Metrics: reconciler.NewMetrics(),
		Builder: builder,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload reads both stores from disk again.
func (s *Services) Reload() error {
	mappingStore, err := mapping.Load(s.Config.Mapping)
	if err != nil {
		return err
	}
	definitionStore, err := definitions.Load(s.Config.DefinitionsPath)
	if err != nil {
		return err
	}

	registry, err := metadata.New(metadata.Options{
		Mapping:     mappingStore,
		Definitions: definitionStore,
		Engine:      reconciler.NewEngine(mappingStore, definitionStore, s.Queue, s.Metrics),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mapping = mappingStore
	s.definitions = definitionStore
	s.registry = registry
	s.mu.Unlock()

	logging.Debug("Bootstrap", "Stores loaded: mapping %s, definitions %s", s.Config.Mapping, s.Config.DefinitionsPath)
	return nil
}

// Mapping returns the current mapping store.
func (s *Services) Mapping() *mapping.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapping
}

// Definitions returns the current definition store.
func (s *Services) Definitions() *definitions.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.definitions
}

// Registry returns the registration service over the current stores.
func (s *Services) Registry() *metadata.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}

// Transport builds the configured document transport.
func (s *Services) Transport() (transport.Transport, error) {
	return transport.New(s.Config.Transport.Kind, transport.Options{
		URL:          s.Config.TransportURL(),
		Command:      s.Config.Transport.Command,
		MaxAttempts:  s.Config.Transport.MaxAttempts,
		PollInterval: s.Config.Transport.PollInterval.Duration,
		Timeout:      s.Config.ImportTimeout(),
	})
}
