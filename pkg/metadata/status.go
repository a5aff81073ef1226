package metadata

import (
	"sort"

	"polarizer/internal/reconciler"
)

// Status describes one (identity, project) pair as the stores see it now.
type Status struct {
	Identity     string           `json:"identity"`
	Project      string           `json:"project"`
	MappingID    string           `json:"mapping-id"`
	DefinitionID string           `json:"definition-id"`
	State        reconciler.State `json:"state"`

	// Mapped and Defined report which stores hold the pair at all.
	Mapped  bool `json:"mapped"`
	Defined bool `json:"defined"`
}

// Mismatch reports whether both ids are set and differ.
func (s Status) Mismatch() bool {
	return s.State == reconciler.StateBothSet && s.MappingID != s.DefinitionID
}

// Status classifies every pair known to either store without changing them.
// Pairs only present in the mapping are listed with Defined false.
func (s *Service) Status() []Status {
	type key struct{ identity, project string }
	rows := make(map[key]*Status)

	for identity, projects := range s.mapping.Snapshot() {
		for project, entry := range projects {
			rows[key{identity, project}] = &Status{
				Identity:  identity,
				Project:   project,
				MappingID: entry.ID,
				Mapped:    true,
			}
		}
	}

	if s.definitions != nil {
		for _, entry := range s.definitions.Entries() {
			k := key{entry.Identity, entry.Project}
			row, ok := rows[k]
			if !ok {
				row = &Status{Identity: entry.Identity, Project: entry.Project}
				rows[k] = row
			}
			row.DefinitionID = entry.Record.ID
			row.Defined = true
		}
	}

	out := make([]Status, 0, len(rows))
	for _, row := range rows {
		row.State = reconciler.Classify(row.MappingID, row.DefinitionID)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Identity != out[j].Identity {
			return out[i].Identity < out[j].Identity
		}
		return out[i].Project < out[j].Project
	})
	return out
}
