package reconciler

import (
	"context"
	"time"

	"polarizer/internal/mapping"
	"polarizer/internal/testcase"
)

// State is the classification of an (identity, project) pair by which of its
// two identifiers are set.
type State string

const (
	// StateBothSet means the mapping and the definition both carry an id.
	StateBothSet State = "BothSet"

	// StateMetaMissing means only the mapping carries an id.
	StateMetaMissing State = "MetaMissing"

	// StateMapMissing means only the definition carries an id.
	StateMapMissing State = "MapMissing"

	// StateBothMissing means neither side has an id yet.
	StateBothMissing State = "BothMissing"
)

// Action describes what the engine did for a pair.
type Action string

const (
	// ActionNone means the pair was already consistent.
	ActionNone Action = "None"

	// ActionReportMismatch means both ids are set and differ; nothing was changed.
	ActionReportMismatch Action = "ReportMismatch"

	// ActionPropagateToDefinition copied the mapping id into the definition.
	ActionPropagateToDefinition Action = "PropagateToDefinition"

	// ActionPropagateToMapping copied the definition id into the mapping.
	ActionPropagateToMapping Action = "PropagateToMapping"

	// ActionEnqueue added the record to the import queue for a first import.
	ActionEnqueue Action = "Enqueue"
)

// Request asks the engine to reconcile one (identity, project) pair.
type Request struct {
	// Identity is the fully qualified test name.
	Identity string

	// Project is the remote namespace.
	Project string

	// Record is the definition side. The engine writes a propagated id into it.
	Record *testcase.Record

	// Persisted means the record lives in the definition store, so a
	// propagated id is also written back to the store.
	Persisted bool

	// DefinitionKey is the key of the record in the definition store when it
	// differs from Identity.
	DefinitionKey string

	// Update forces the record into the import queue whatever the state.
	Update bool
}

// Result is the outcome of reconciling one pair.
type Result struct {
	Identity string
	Project  string
	State    State
	Action   Action

	// Queued is true when the record was added to the import queue, either
	// because the pair is new or because an update was forced.
	Queued bool

	// Mismatch is set for a BothSet pair with differing ids. It is reported,
	// never returned as an error.
	Mismatch *IdentifierMismatchError
}

// MappingStore is the identifier mapping side of reconciliation.
type MappingStore interface {
	Get(identity, project string) (mapping.Entry, bool)
	Upsert(identity, project, id string, params []string) error
	SetID(identity, project, id string) error
}

// DefinitionStore is the durable definition side of reconciliation.
type DefinitionStore interface {
	SetID(key, project, id string) error
}

// StoreKind identifies which durable store a change event refers to.
type StoreKind string

const (
	// StoreMapping is the identifier mapping file.
	StoreMapping StoreKind = "Mapping"

	// StoreDefinitions is the definition file or directory.
	StoreDefinitions StoreKind = "Definitions"
)

// ChangeOperation represents the type of change detected.
type ChangeOperation string

const (
	// OperationCreate indicates a new file was created.
	OperationCreate ChangeOperation = "Create"

	// OperationUpdate indicates an existing file was modified.
	OperationUpdate ChangeOperation = "Update"

	// OperationDelete indicates a file was deleted or renamed away.
	OperationDelete ChangeOperation = "Delete"
)

// ChangeEvent represents a detected change in one of the stores.
type ChangeEvent struct {
	// Store is the store that changed.
	Store StoreKind

	// Operation describes what kind of change occurred.
	Operation ChangeOperation

	// Timestamp is when the change was detected.
	Timestamp time.Time

	// FilePath is the path to the file that changed.
	FilePath string
}

// ChangeDetector is the interface for components that detect store changes.
type ChangeDetector interface {
	// Start begins watching for changes and sends them to changes.
	Start(ctx context.Context, changes chan<- ChangeEvent) error

	// Stop gracefully stops the change detector.
	Stop() error
}

// PassFunc runs one reconciliation pass after a change was detected.
type PassFunc func(ctx context.Context, event ChangeEvent) error

// WatcherConfig holds configuration for the Watcher.
type WatcherConfig struct {
	// MappingPath is the mapping file to watch.
	MappingPath string

	// DefinitionsPath is the definition file or directory to watch.
	DefinitionsPath string

	// DebounceInterval is how long to wait for additional changes before running a pass.
	// Defaults to 500ms if not specified.
	DebounceInterval time.Duration
}
