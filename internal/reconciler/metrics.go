package reconciler

import (
	"sync"
	"time"

	"polarizer/pkg/logging"
)

// Metrics tracks reconciliation outcomes for status reporting.
//
// Counts are kept per State so a status run can show how many pairs were
// consistent, healed, or still waiting for a first import.
type Metrics struct {
	mu sync.RWMutex

	stateCounts map[State]int64

	totalPasses     int64
	totalMismatches int64
	totalEnqueued   int64
	totalFailures   int64

	lastPassAt    time.Time
	lastFailureAt time.Time
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		stateCounts: make(map[State]int64),
	}
}

// RecordState counts one classified pair.
func (m *Metrics) RecordState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stateCounts[state]++
	m.lastPassAt = time.Now()
}

// RecordMismatch counts a BothSet pair with differing ids.
func (m *Metrics) RecordMismatch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalMismatches++
}

// RecordEnqueue counts a record added to the import queue.
func (m *Metrics) RecordEnqueue() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalEnqueued++
}

// RecordFailure counts a propagation that could not be persisted.
func (m *Metrics) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalFailures++
	m.lastFailureAt = time.Now()

	logging.Debug("ReconcilerMetrics", "Propagation failure recorded (failures: %d)", m.totalFailures)
}

// RecordPass counts one completed watch pass.
func (m *Metrics) RecordPass() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalPasses++
}

// StateCount returns how many pairs were classified as state.
func (m *Metrics) StateCount(state State) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stateCounts[state]
}

// MetricsSummary is a read-only view of the metrics.
type MetricsSummary struct {
	BothSet     int64     `json:"both_set"`
	MetaMissing int64     `json:"meta_missing"`
	MapMissing  int64     `json:"map_missing"`
	BothMissing int64     `json:"both_missing"`
	Mismatches  int64     `json:"mismatches"`
	Enqueued    int64     `json:"enqueued"`
	Failures    int64     `json:"failures"`
	Passes      int64     `json:"passes"`
	LastPassAt  time.Time `json:"last_pass_at,omitempty"`
	LastFailure time.Time `json:"last_failure_at,omitempty"`
}

// Total returns the number of classified pairs.
func (s MetricsSummary) Total() int64 {
	return s.BothSet + s.MetaMissing + s.MapMissing + s.BothMissing
}

// GetSummary returns a snapshot of the metrics.
func (m *Metrics) GetSummary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSummary{
		BothSet:     m.stateCounts[StateBothSet],
		MetaMissing: m.stateCounts[StateMetaMissing],
		MapMissing:  m.stateCounts[StateMapMissing],
		BothMissing: m.stateCounts[StateBothMissing],
		Mismatches:  m.totalMismatches,
		Enqueued:    m.totalEnqueued,
		Failures:    m.totalFailures,
		Passes:      m.totalPasses,
		LastPassAt:  m.lastPassAt,
		LastFailure: m.lastFailureAt,
	}
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stateCounts = make(map[State]int64)
	m.totalPasses = 0
	m.totalMismatches = 0
	m.totalEnqueued = 0
	m.totalFailures = 0
	m.lastPassAt = time.Time{}
	m.lastFailureAt = time.Time{}
}
