package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"polarizer/pkg/logging"
)

// Entry is the mapping of one test identity in one project.
// An empty ID means the remote system has not assigned one yet.
type Entry struct {
	ID     string   `json:"id"`
	Params []string `json:"params"`
}

// Mapping is the whole store content: identity -> project -> entry.
type Mapping map[string]map[string]Entry

// Clone returns a deep copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for identity, projects := range m {
		inner := make(map[string]Entry, len(projects))
		for project, entry := range projects {
			inner[project] = Entry{ID: entry.ID, Params: slices.Clone(entry.Params)}
		}
		out[identity] = inner
	}
	return out
}

// Store is the file-backed identifier mapping store.
//
// Every mutation rewrites the whole file: the JSON format has no partial update,
// so the store is read once and written back in full. Concurrent writers from
// different processes are last-writer-wins.
type Store struct {
	mu   sync.RWMutex
	path string
	data Mapping
}

// New returns an empty store that will persist to path.
func New(path string) *Store {
	return &Store{
		path: path,
		data: make(Mapping),
	}
}

// Load reads the mapping file at path.
func Load(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("mapping path cannot be empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StoreNotFoundError{Store: "mapping store", Path: path}
		}
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	data, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}

	logging.Info("MappingStore", "Loaded %d identities from %s", len(data), path)
	return &Store{path: path, data: data}, nil
}

// Decode parses mapping JSON. An empty document is an empty mapping.
func Decode(raw []byte) (Mapping, error) {
	data := make(Mapping)
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	for identity, projects := range data {
		if projects == nil {
			data[identity] = make(map[string]Entry)
		}
	}
	return data, nil
}

// Encode renders a mapping with sorted keys and two-space indentation.
func Encode(m Mapping) ([]byte, error) {
	if m == nil {
		m = Mapping{}
	}
	// encoding/json sorts map keys, which keeps the file diff-stable.
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the entry for identity in project.
func (s *Store) Get(identity, project string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects, ok := s.data[identity]
	if !ok {
		return Entry{}, false
	}
	entry, ok := projects[project]
	if !ok {
		return Entry{}, false
	}
	return Entry{ID: entry.ID, Params: slices.Clone(entry.Params)}, true
}

// Upsert writes the entry for identity in project, creating the identity or the
// project key as needed, then persists the whole store.
func (s *Store) Upsert(identity, project, id string, params []string) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}
	if project == "" {
		return fmt.Errorf("project cannot be empty")
	}
	if params == nil {
		params = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	projects, ok := next[identity]
	if !ok {
		projects = make(map[string]Entry)
		next[identity] = projects
	}
	projects[project] = Entry{ID: id, Params: slices.Clone(params)}

	if err := s.commitLocked(next); err != nil {
		return err
	}
	logging.Debug("MappingStore", "Upserted %s/%s (id=%q)", identity, project, id)
	return nil
}

// SetID replaces the id of an existing entry and persists the store.
func (s *Store) SetID(identity, project, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[identity][project]
	if !ok {
		return fmt.Errorf("no mapping entry for %s/%s", identity, project)
	}
	entry.ID = id
	next := s.data.Clone()
	next[identity][project] = entry

	if err := s.commitLocked(next); err != nil {
		return err
	}
	logging.Info("MappingStore", "Set id of %s/%s to %s", identity, project, id)
	return nil
}

// Merge applies ids returned by the remote system. Ids only fill entries whose
// local id is empty; params from the remote side are used only for entries the
// store does not know yet. It returns the number of entries changed.
func (s *Store) Merge(remote Mapping) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	changed := 0
	for identity, projects := range remote {
		for project, incoming := range projects {
			local, known := next[identity][project]
			switch {
			case !known:
				if next[identity] == nil {
					next[identity] = make(map[string]Entry)
				}
				params := incoming.Params
				if params == nil {
					params = []string{}
				}
				next[identity][project] = Entry{ID: incoming.ID, Params: slices.Clone(params)}
				changed++
			case local.ID == "" && incoming.ID != "":
				local.ID = incoming.ID
				next[identity][project] = local
				changed++
			case local.ID != "" && incoming.ID != "" && local.ID != incoming.ID:
				logging.Warn("MappingStore", "Remote id %s for %s/%s differs from local id %s, keeping local",
					incoming.ID, identity, project, local.ID)
			}
		}
	}

	if changed == 0 {
		return 0, nil
	}
	if err := s.commitLocked(next); err != nil {
		return 0, err
	}
	logging.Info("MappingStore", "Merged %d entries from remote mapping", changed)
	return changed, nil
}

// Identities returns all identities in sorted order.
func (s *Store) Identities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for identity := range s.data {
		ids = append(ids, identity)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a deep copy of the store content.
func (s *Store) Snapshot() Mapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Bytes returns the encoded store content.
func (s *Store) Bytes() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Encode(s.data)
}

// Save persists the store.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.data)
}

// commitLocked persists next and only then makes it the store content, so a
// failed write leaves memory matching the file.
func (s *Store) commitLocked(next Mapping) error {
	if err := s.write(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *Store) write(data Mapping) error {
	if s.path == "" {
		return nil
	}

	out, err := Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(s.path, out, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", s.path, err)
	}
	return nil
}
