package reconciler

import (
	"sort"
	"sync"

	"polarizer/internal/testcase"
	"polarizer/pkg/logging"
)

// QueueEntry is one record waiting for export.
type QueueEntry struct {
	Identity string
	Record   testcase.Record
}

// ImportQueue accumulates records pending export, grouped by project.
//
// Within a project entries keep insertion order. Adding an identity that is
// already queued replaces the queued record in place, so a pair is never
// exported twice in one batch.
type ImportQueue struct {
	mu sync.Mutex

	// items holds queued entries per project in FIFO order
	items map[string][]QueueEntry
}

// NewImportQueue creates an empty import queue.
func NewImportQueue() *ImportQueue {
	return &ImportQueue{
		items: make(map[string][]QueueEntry),
	}
}

// Add queues rec under its project. It reports whether an entry for the same
// identity was replaced.
func (q *ImportQueue) Add(identity string, rec testcase.Record) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	project := rec.Project
	for i, existing := range q.items[project] {
		if existing.Identity == identity {
			q.items[project][i] = QueueEntry{Identity: identity, Record: rec}
			logging.Debug("ImportQueue", "Replaced queued %s/%s", project, identity)
			return true
		}
	}

	q.items[project] = append(q.items[project], QueueEntry{Identity: identity, Record: rec})
	return false
}

// Len returns the number of queued entries across all projects.
func (q *ImportQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, entries := range q.items {
		n += len(entries)
	}
	return n
}

// Projects returns the projects with queued entries in sorted order.
func (q *ImportQueue) Projects() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return sortedProjects(q.items)
}

// Entries returns a copy of the queued entries for project.
func (q *ImportQueue) Entries(project string) []QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return cloneEntries(q.items[project])
}

// Contains reports whether identity is queued under project.
func (q *ImportQueue) Contains(project, identity string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.items[project] {
		if e.Identity == identity {
			return true
		}
	}
	return false
}

// Flush drains the queue and returns its content grouped by project.
func (q *ImportQueue) Flush() map[string][]QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = make(map[string][]QueueEntry)
	return out
}

func sortedProjects(items map[string][]QueueEntry) []string {
	projects := make([]string, 0, len(items))
	for project, entries := range items {
		if len(entries) > 0 {
			projects = append(projects, project)
		}
	}
	sort.Strings(projects)
	return projects
}

func cloneEntries(entries []QueueEntry) []QueueEntry {
	if entries == nil {
		return nil
	}
	out := make([]QueueEntry, len(entries))
	for i, e := range entries {
		out[i] = QueueEntry{Identity: e.Identity, Record: e.Record.Clone()}
	}
	return out
}
