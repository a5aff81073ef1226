package testcase

import (
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultScope is the scope given to parameters that do not declare one.
const DefaultScope = "local"

// SelfParam is the receiver name that never becomes a test step parameter.
const SelfParam = "self"

// Parameter is one named argument of a test step.
type Parameter struct {
	Name  string `yaml:"name" json:"name"`
	Scope string `yaml:"scope,omitempty" json:"scope,omitempty"`
}

// TestStep is an ordered group of parameters.
type TestStep struct {
	Parameters []Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// LinkedWorkItem links a test case to another work item (usually a requirement).
type LinkedWorkItem struct {
	ID      string `yaml:"id" json:"id"`
	Role    Role   `yaml:"role" json:"role"`
	Suspect bool   `yaml:"suspect,omitempty" json:"suspect,omitempty"`
}

// Record is the metadata of one test case for one project.
//
// An empty ID means the remote system has not assigned an identifier yet.
type Record struct {
	ID              string           `yaml:"id" json:"id"`
	Project         string           `yaml:"project,omitempty" json:"project,omitempty"`
	Title           string           `yaml:"title,omitempty" json:"title,omitempty"`
	Description     string           `yaml:"description,omitempty" json:"description,omitempty"`
	TestSteps       []TestStep       `yaml:"test-steps,omitempty" json:"test-steps,omitempty"`
	CustomFields    CustomFields     `yaml:"custom-fields,omitempty" json:"custom-fields,omitempty"`
	LinkedWorkItems []LinkedWorkItem `yaml:"linked-work-items,omitempty" json:"linked-work-items,omitempty"`
	Update          bool             `yaml:"update,omitempty" json:"update,omitempty"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.TestSteps != nil {
		out.TestSteps = make([]TestStep, len(r.TestSteps))
		for i, step := range r.TestSteps {
			out.TestSteps[i] = TestStep{Parameters: slices.Clone(step.Parameters)}
		}
	}
	out.LinkedWorkItems = slices.Clone(r.LinkedWorkItems)
	return out
}

// Validate reports enumeration values that are set but outside their domain.
// Decoding already rejects them, so this only matters for records built in code.
func (r Record) Validate() error {
	cf := r.CustomFields
	checks := []struct {
		name  string
		set   bool
		valid bool
	}{
		{"importance", cf.Importance != "", cf.Importance.Valid()},
		{"automation", cf.Automation != "", cf.Automation.Valid()},
		{"caselevel", cf.Level != "", cf.Level.Valid()},
		{"caseposneg", cf.PosNeg != "", cf.PosNeg.Valid()},
		{"testtype", cf.TestType != "", cf.TestType.Valid()},
		{"subtype1", cf.Subtype1 != "", cf.Subtype1.Valid()},
		{"subtype2", cf.Subtype2 != "", cf.Subtype2.Valid()},
	}
	for _, c := range checks {
		if c.set && !c.valid {
			return fmt.Errorf("custom field %s has an invalid value", c.name)
		}
	}
	for _, item := range r.LinkedWorkItems {
		if item.ID == "" {
			return fmt.Errorf("linked work item without id")
		}
		if !item.Role.Valid() {
			return fmt.Errorf("linked work item %s has invalid role %q", item.ID, item.Role)
		}
	}
	return nil
}

// ParamNames returns the parameter names of every step in declaration order,
// without the receiver and unnamed parameters.
func (r Record) ParamNames() []string {
	var names []string
	for _, step := range r.TestSteps {
		for _, p := range step.Parameters {
			if p.Name == SelfParam || p.Name == "" {
				continue
			}
			names = append(names, p.Name)
		}
	}
	return names
}

// StepsFromParams builds the single test step used when a record declares none.
// The step exists even when params is empty so parameterless tests still export.
func StepsFromParams(params []string) []TestStep {
	step := TestStep{}
	for _, name := range params {
		if name == SelfParam || name == "" {
			continue
		}
		step.Parameters = append(step.Parameters, Parameter{Name: name, Scope: DefaultScope})
	}
	return []TestStep{step}
}

// Projects is a project list that decodes from either a single string or a sequence.
type Projects []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Projects) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*p = projectsOf(single)
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*p = Projects(many)
		return nil
	default:
		return fmt.Errorf("line %d: project must be a string or a list of strings", value.Line)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Projects) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = projectsOf(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("project must be a string or a list of strings: %w", err)
	}
	*p = Projects(many)
	return nil
}

func projectsOf(single string) Projects {
	if single == "" {
		return nil
	}
	return Projects{single}
}

// Definition is an inline metadata declaration attached to a test function.
// Project may name one or several projects; Records replicates the content per project.
type Definition struct {
	Project         Projects         `yaml:"project,omitempty" json:"project,omitempty"`
	ID              string           `yaml:"id,omitempty" json:"id,omitempty"`
	Title           string           `yaml:"title,omitempty" json:"title,omitempty"`
	Description     string           `yaml:"description,omitempty" json:"description,omitempty"`
	TestSteps       []TestStep       `yaml:"test-steps,omitempty" json:"test-steps,omitempty"`
	CustomFields    CustomFields     `yaml:"custom-fields,omitempty" json:"custom-fields,omitempty"`
	LinkedWorkItems []LinkedWorkItem `yaml:"linked-work-items,omitempty" json:"linked-work-items,omitempty"`
	Update          bool             `yaml:"update,omitempty" json:"update,omitempty"`
}

// Record returns the declaration as a record keyed under project.
func (d Definition) Record(project string) Record {
	return Record{
		ID:              d.ID,
		Project:         project,
		Title:           d.Title,
		Description:     d.Description,
		TestSteps:       d.TestSteps,
		CustomFields:    d.CustomFields,
		LinkedWorkItems: d.LinkedWorkItems,
		Update:          d.Update,
	}.Clone()
}

// Records returns one record per declared project, in declaration order,
// skipping duplicate project names.
func (d Definition) Records() []Record {
	seen := make(map[string]bool, len(d.Project))
	records := make([]Record, 0, len(d.Project))
	for _, project := range d.Project {
		if project == "" || seen[project] {
			continue
		}
		seen[project] = true
		records = append(records, d.Record(project))
	}
	return records
}
