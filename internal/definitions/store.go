package definitions

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"polarizer/internal/mapping"
	"polarizer/internal/testcase"
	"polarizer/pkg/logging"
)

// wrapper is the per-project node of a definition file.
type wrapper struct {
	Testcase testcase.Record `yaml:"testcase"`
}

// document is the content of one definition file: identity -> project -> wrapper.
type document map[string]map[string]*wrapper

// source is one definition file. root keeps the parsed node tree so a
// rewrite only touches the scalar that changed.
type source struct {
	path string
	root *yaml.Node
	doc  document
}

// Entry is one definition together with the file it was read from.
type Entry struct {
	Identity string
	Project  string
	Record   testcase.Record
	Path     string
}

// Store is the file-backed definition store.
//
// The backing path is either a single YAML file or a directory whose *.yaml and
// *.yml files are read in name order. When several files define the same
// identity and project, lookups use the first one.
type Store struct {
	mu      sync.RWMutex
	root    string
	sources []*source
}

// Load reads the definitions at path.
func Load(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("definitions path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &mapping.StoreNotFoundError{Store: "definition store", Path: path}
		}
		return nil, fmt.Errorf("failed to stat definitions path %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = listYAMLFiles(path)
		if err != nil {
			return nil, err
		}
	}

	s := &Store{root: path}
	for _, file := range files {
		src, err := readSource(file)
		if err != nil {
			return nil, err
		}
		s.sources = append(s.sources, src)
	}

	logging.Info("DefinitionStore", "Loaded %d definitions from %d file(s) under %s", s.count(), len(s.sources), path)
	return s, nil
}

// listYAMLFiles lists all .yaml and .yml files in a directory in sorted order.
func listYAMLFiles(dirPath string) ([]string, error) {
	yamlFiles, err := filepath.Glob(filepath.Join(dirPath, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob yaml files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(dirPath, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob yml files: %w", err)
	}

	all := append(yamlFiles, ymlFiles...)
	sort.Strings(all)
	return all, nil
}

func readSource(path string) (*source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file %s: %w", path, err)
	}

	doc := make(document)
	root := &yaml.Node{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, root); err != nil {
			return nil, fmt.Errorf("failed to parse definitions file %s: %w", path, err)
		}
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse definitions file %s: %w", path, err)
		}
	}

	for identity, projects := range doc {
		for project, w := range projects {
			if w == nil {
				w = &wrapper{}
				projects[project] = w
			}
			if err := w.Testcase.Validate(); err != nil {
				return nil, fmt.Errorf("invalid definition %s/%s in %s: %w", identity, project, path, err)
			}
		}
	}

	return &source{path: path, root: root, doc: doc}, nil
}

// record returns the definition of identity in project with Project filled
// from the key when the file leaves it out.
func (src *source) record(identity, project string) testcase.Record {
	rec := src.doc[identity][project].Testcase.Clone()
	if rec.Project == "" {
		rec.Project = project
	}
	return rec
}

// Path returns the file or directory the store was loaded from.
func (s *Store) Path() string {
	return s.root
}

// Files returns the definition files backing the store.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]string, len(s.sources))
	for i, src := range s.sources {
		files[i] = src.path
	}
	return files
}

func (s *Store) count() int {
	n := 0
	for _, src := range s.sources {
		for _, projects := range src.doc {
			n += len(projects)
		}
	}
	return n
}

// matches returns every source defining key in project, in source order.
func (s *Store) matches(key, project string) []*source {
	var found []*source
	for _, src := range s.sources {
		if _, ok := src.doc[key][project]; ok {
			found = append(found, src)
		}
	}
	return found
}

// Lookup returns the definition of key in project.
//
// No match is a LookupMissingError. Several matches are logged as a warning and
// the first one wins.
func (s *Store) Lookup(key, project string) (testcase.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.matches(key, project)
	switch len(found) {
	case 0:
		return testcase.Record{}, &LookupMissingError{Key: key, Project: project}
	case 1:
	default:
		paths := make([]string, len(found))
		for i, src := range found {
			paths[i] = src.path
		}
		ambiguous := &LookupAmbiguousError{Key: key, Project: project, Paths: paths}
		logging.Warn("DefinitionStore", "%s", ambiguous.Error())
	}

	return found[0].record(key, project), nil
}

// Projects returns the sorted projects that define key in any file.
func (s *Store) Projects(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, src := range s.sources {
		for project := range src.doc[key] {
			seen[project] = true
		}
	}

	projects := make([]string, 0, len(seen))
	for project := range seen {
		projects = append(projects, project)
	}
	sort.Strings(projects)
	return projects
}

// Entries returns the effective definition of every identity and project,
// sorted by identity then project. Shadowed duplicates are not returned.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct{ identity, project string }
	seen := make(map[key]bool)
	var entries []Entry
	for _, src := range s.sources {
		for identity, projects := range src.doc {
			for project := range projects {
				k := key{identity, project}
				if seen[k] {
					continue
				}
				seen[k] = true
				entries = append(entries, Entry{
					Identity: identity,
					Project:  project,
					Record:   src.record(identity, project),
					Path:     src.path,
				})
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Identity != entries[j].Identity {
			return entries[i].Identity < entries[j].Identity
		}
		return entries[i].Project < entries[j].Project
	})
	return entries
}

// SetID writes id into the effective definition of key in project and persists
// the file that holds it.
func (s *Store) SetID(key, project, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.matches(key, project)
	if len(found) == 0 {
		return &LookupMissingError{Key: key, Project: project}
	}

	src := found[0]
	previous := cloneNode(src.root)
	if err := src.setIDNode(key, project, id); err != nil {
		src.root = previous
		return err
	}
	if err := src.save(); err != nil {
		src.root = previous
		return err
	}
	src.doc[key][project].Testcase.ID = id

	logging.Info("DefinitionStore", "Set id of %s/%s to %s in %s", key, project, id, src.path)
	return nil
}

// setIDNode writes id into the node tree, adding the id key or the testcase
// mapping when the file does not have them yet.
func (src *source) setIDNode(identity, project, id string) error {
	if len(src.root.Content) == 0 {
		return fmt.Errorf("definitions file %s is empty", src.path)
	}
	node := src.root.Content[0]
	for _, k := range []string{identity, project, "testcase"} {
		child := mappingValue(node, k)
		if child == nil {
			if node.Kind != yaml.MappingNode {
				return fmt.Errorf("definition %s/%s in %s is not a mapping", identity, project, src.path)
			}
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalarNode(k), child)
		}
		if child.Kind == yaml.ScalarNode && child.Tag == "!!null" {
			*child = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		node = child
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("definition %s/%s in %s is not a mapping", identity, project, src.path)
	}

	if value := mappingValue(node, "id"); value != nil {
		value.Kind = yaml.ScalarNode
		value.Tag = "!!str"
		value.Value = id
		return nil
	}
	node.Content = append([]*yaml.Node{scalarNode("id"), scalarNode(id)}, node.Content...)
	return nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Content = make([]*yaml.Node, len(n.Content))
	for i, child := range n.Content {
		c.Content[i] = cloneNode(child)
	}
	return &c
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func (src *source) save() error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(src.root); err != nil {
		return fmt.Errorf("failed to encode definitions for %s: %w", src.path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode definitions for %s: %w", src.path, err)
	}

	if err := os.WriteFile(src.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write definitions file %s: %w", src.path, err)
	}
	return nil
}

// IsDefinitionFile reports whether path has a YAML extension.
func IsDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
