package export

import (
	"fmt"

	"polarizer/internal/reconciler"
	"polarizer/internal/template"
	"polarizer/internal/testcase"
	"polarizer/pkg/logging"
)

// Selector identifies the origin of an import batch.
type Selector struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Options controls how documents are built.
type Options struct {
	// Selector is written into every batch's response properties.
	Selector Selector

	// TitlePrefix and TitleSuffix are templates rendered over Project, Title
	// and ID and wrapped around every title.
	TitlePrefix string
	TitleSuffix string
}

// Builder converts records into export documents.
type Builder struct {
	opts   Options
	titles *template.Engine
}

// NewBuilder creates a builder. It fails when a title template does not parse.
func NewBuilder(opts Options) (*Builder, error) {
	titles := template.New()
	if err := titles.Validate(opts.TitlePrefix); err != nil {
		return nil, fmt.Errorf("title prefix: %w", err)
	}
	if err := titles.Validate(opts.TitleSuffix); err != nil {
		return nil, fmt.Errorf("title suffix: %w", err)
	}
	return &Builder{opts: opts, titles: titles}, nil
}

// BuildTestCase converts one record. A record without a title, a description
// or at least one test step is rejected with an IncompleteRecordError.
func (b *Builder) BuildTestCase(identity string, rec testcase.Record) (TestCase, error) {
	var missing []string
	if rec.Title == "" {
		missing = append(missing, "title")
	}
	if rec.Description == "" {
		missing = append(missing, "description")
	}
	if len(rec.TestSteps) == 0 {
		missing = append(missing, "test steps")
	}
	if len(missing) > 0 {
		return TestCase{}, &IncompleteRecordError{Identity: identity, Project: rec.Project, Missing: missing}
	}

	title, err := b.title(rec)
	if err != nil {
		return TestCase{}, fmt.Errorf("cannot export %s for project %s: %w", identity, rec.Project, err)
	}

	tc := TestCase{
		ID:          rec.ID,
		Title:       title,
		Description: rec.Description,
		TestSteps:   TestSteps{Steps: make([]TestStep, 0, len(rec.TestSteps))},
	}

	for _, step := range rec.TestSteps {
		column := TestStepColumn{ID: StepColumnID}
		for _, p := range step.Parameters {
			if p.Name == testcase.SelfParam {
				continue
			}
			scope := p.Scope
			if scope == "" {
				scope = testcase.DefaultScope
			}
			column.Parameters = append(column.Parameters, Parameter{Name: p.Name, Scope: scope})
		}
		tc.TestSteps.Steps = append(tc.TestSteps.Steps, TestStep{Column: column})
	}

	if fields := rec.CustomFields.Fields(); len(fields) > 0 {
		tc.CustomFields = &CustomFields{Fields: make([]CustomField, 0, len(fields))}
		for _, f := range fields {
			tc.CustomFields.Fields = append(tc.CustomFields.Fields, CustomField{ID: f.ID, Content: f.Content})
		}
	}

	if len(rec.LinkedWorkItems) > 0 {
		tc.LinkedWorkItems = &LinkedWorkItems{Items: make([]LinkedWorkItem, 0, len(rec.LinkedWorkItems))}
		for _, item := range rec.LinkedWorkItems {
			tc.LinkedWorkItems.Items = append(tc.LinkedWorkItems.Items, LinkedWorkItem{
				WorkItemID:   item.ID,
				RoleID:       item.Role.String(),
				LookupMethod: LookupMethodID,
				Suspect:      item.Suspect,
			})
		}
	}

	return tc, nil
}

func (b *Builder) title(rec testcase.Record) (string, error) {
	if b.opts.TitlePrefix == "" && b.opts.TitleSuffix == "" {
		return rec.Title, nil
	}

	data := map[string]interface{}{
		"Project": rec.Project,
		"Title":   rec.Title,
		"ID":      rec.ID,
	}
	prefix, err := b.titles.Render(b.opts.TitlePrefix, data)
	if err != nil {
		return "", err
	}
	suffix, err := b.titles.Render(b.opts.TitleSuffix, data)
	if err != nil {
		return "", err
	}
	return prefix + rec.Title + suffix, nil
}

// BuildBatch wraps the queued entries of one project into a document. It
// returns the identities that made it into the document. Entries that cannot
// be built are left out and returned as errors; the rest of the batch
// proceeds.
func (b *Builder) BuildBatch(project string, entries []reconciler.QueueEntry) (*Document, []string, []error) {
	doc := &Document{
		ProjectID: project,
		Properties: ResponseProperties{
			Properties: []ResponseProperty{{Name: b.opts.Selector.Name, Value: b.opts.Selector.Value}},
		},
		TestCases: make([]TestCase, 0, len(entries)),
	}

	var (
		exported []string
		rejected []error
	)
	for _, entry := range entries {
		tc, err := b.BuildTestCase(entry.Identity, entry.Record)
		if err != nil {
			logging.Warn("ExportBuilder", "Rejected %s from %s batch: %v", entry.Identity, project, err)
			rejected = append(rejected, err)
			continue
		}
		doc.TestCases = append(doc.TestCases, tc)
		exported = append(exported, entry.Identity)
	}

	logging.Debug("ExportBuilder", "Built %s batch with %d test cases (%d rejected)",
		project, len(doc.TestCases), len(rejected))
	return doc, exported, rejected
}
