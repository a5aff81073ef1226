package export

import (
	"context"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polarizer/internal/reconciler"
	"polarizer/internal/testcase"
)

var testSelector = Selector{Name: "polarizer", Value: "testcase_importer"}

func loginRecord() testcase.Record {
	return testcase.Record{
		ID:          "RHEL7-1",
		Project:     "RHEL7",
		Title:       "Login works",
		Description: "Logs in",
		TestSteps: []testcase.TestStep{{
			Parameters: []testcase.Parameter{
				{Name: "self"},
				{Name: "user", Scope: "local"},
			},
		}},
		CustomFields: testcase.CustomFields{Importance: testcase.ImportanceHigh},
	}
}

func newTestBuilder(t *testing.T, opts Options) *Builder {
	t.Helper()
	if opts.Selector == (Selector{}) {
		opts.Selector = testSelector
	}
	b, err := NewBuilder(opts)
	require.NoError(t, err)
	return b
}

func TestBuildBatch_Golden(t *testing.T) {
	b := newTestBuilder(t, Options{})

	doc, exported, rejected := b.BuildBatch("RHEL7", []reconciler.QueueEntry{
		{Identity: "pkg.TestLogin", Record: loginRecord()},
	})
	require.Empty(t, rejected)
	assert.Equal(t, []string{"pkg.TestLogin"}, exported)

	out, err := Marshal(doc)
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<testcases project-id="RHEL7">
  <response-properties>
    <response-property name="polarizer" value="testcase_importer"></response-property>
  </response-properties>
  <testcase id="RHEL7-1">
    <title>Login works</title>
    <description>Logs in</description>
    <test-steps>
      <test-step>
        <test-step-column id="step">
          <parameter name="user" scope="local"></parameter>
        </test-step-column>
      </test-step>
    </test-steps>
    <custom-fields>
      <custom-field id="caseimportance" content="high"></custom-field>
    </custom-fields>
  </testcase>
</testcases>
`
	if diff := cmp.Diff(expected, string(out)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTestCase_ElidesSelfAndDefaultsScope(t *testing.T) {
	b := newTestBuilder(t, Options{})
	rec := loginRecord()
	rec.TestSteps[0].Parameters = append(rec.TestSteps[0].Parameters, testcase.Parameter{Name: "host"})

	tc, err := b.BuildTestCase("pkg.TestLogin", rec)
	require.NoError(t, err)

	require.Len(t, tc.TestSteps.Steps, 1)
	assert.Equal(t, []Parameter{
		{Name: "user", Scope: "local"},
		{Name: "host", Scope: testcase.DefaultScope},
	}, tc.TestSteps.Steps[0].Column.Parameters)
}

func TestBuildTestCase_NewRecordHasNoID(t *testing.T) {
	b := newTestBuilder(t, Options{})
	rec := loginRecord()
	rec.ID = ""

	tc, err := b.BuildTestCase("pkg.TestLogin", rec)
	require.NoError(t, err)

	out, err := xml.Marshal(tc)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `id=""`)
}

func TestBuildTestCase_Incomplete(t *testing.T) {
	b := newTestBuilder(t, Options{})

	tests := []struct {
		name    string
		mutate  func(*testcase.Record)
		missing []string
	}{
		{name: "no title", mutate: func(r *testcase.Record) { r.Title = "" }, missing: []string{"title"}},
		{name: "no description", mutate: func(r *testcase.Record) { r.Description = "" }, missing: []string{"description"}},
		{name: "no steps", mutate: func(r *testcase.Record) { r.TestSteps = nil }, missing: []string{"test steps"}},
		{
			name:    "everything missing",
			mutate:  func(r *testcase.Record) { *r = testcase.Record{Project: "RHEL7"} },
			missing: []string{"title", "description", "test steps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := loginRecord()
			tt.mutate(&rec)

			_, err := b.BuildTestCase("pkg.TestLogin", rec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIncompleteRecord))

			var inc *IncompleteRecordError
			require.True(t, errors.As(err, &inc))
			assert.Equal(t, tt.missing, inc.Missing)
			assert.Equal(t, "RHEL7", inc.Project)
		})
	}
}

func TestBuildTestCase_LinkedWorkItems(t *testing.T) {
	b := newTestBuilder(t, Options{})
	rec := loginRecord()
	rec.LinkedWorkItems = []testcase.LinkedWorkItem{{ID: "RHEL7-9", Role: testcase.RoleVerifies}}

	tc, err := b.BuildTestCase("pkg.TestLogin", rec)
	require.NoError(t, err)
	require.NotNil(t, tc.LinkedWorkItems)

	out, err := xml.Marshal(tc.LinkedWorkItems)
	require.NoError(t, err)
	assert.Equal(t,
		`<LinkedWorkItems><linked-work-item workitem-id="RHEL7-9" role-id="verifies" lookup-method="id"></linked-work-item></LinkedWorkItems>`,
		string(out))
}

func TestBuildTestCase_TitleTemplates(t *testing.T) {
	b := newTestBuilder(t, Options{
		TitlePrefix: "[{{ .Project | lower }}] ",
		TitleSuffix: "{{ if .ID }} ({{ .ID }}){{ end }}",
	})

	tc, err := b.BuildTestCase("pkg.TestLogin", loginRecord())
	require.NoError(t, err)
	assert.Equal(t, "[rhel7] Login works (RHEL7-1)", tc.Title)
}

func TestNewBuilder_InvalidTemplate(t *testing.T) {
	_, err := NewBuilder(Options{TitlePrefix: "{{ .Project"})
	assert.Error(t, err)
}

func TestBuildBatch_RejectsAndContinues(t *testing.T) {
	b := newTestBuilder(t, Options{})
	bad := loginRecord()
	bad.Description = ""

	doc, exported, rejected := b.BuildBatch("RHEL7", []reconciler.QueueEntry{
		{Identity: "pkg.TestBad", Record: bad},
		{Identity: "pkg.TestLogin", Record: loginRecord()},
	})

	require.Len(t, rejected, 1)
	assert.True(t, errors.Is(rejected[0], ErrIncompleteRecord))
	assert.Equal(t, []string{"pkg.TestLogin"}, exported)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, "RHEL7-1", doc.TestCases[0].ID)
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	b := newTestBuilder(t, Options{})

	rec8 := loginRecord()
	rec8.Project = "RHEL8"
	rec8.ID = ""
	incomplete := loginRecord()
	incomplete.Project = "RHEL9"
	incomplete.TestSteps = nil

	results, err := WriteAll(context.Background(), dir, map[string][]reconciler.QueueEntry{
		"RHEL7": {{Identity: "pkg.TestLogin", Record: loginRecord()}},
		"RHEL8": {{Identity: "pkg.TestLogin", Record: rec8}},
		"RHEL9": {{Identity: "pkg.TestLogin", Record: incomplete}},
	}, b)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "RHEL7", results[0].Project)
	assert.Equal(t, filepath.Join(dir, "RHEL7-testcases.xml"), results[0].Path)
	assert.Equal(t, "RHEL8", results[1].Project)
	assert.Empty(t, results[2].Path, "a project with only rejected records gets no document")
	assert.Len(t, results[2].Rejected, 1)

	raw, err := os.ReadFile(results[1].Path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, xml.Unmarshal(raw, &doc))
	assert.Equal(t, "RHEL8", doc.ProjectID)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, "", doc.TestCases[0].ID)
	assert.Equal(t, testSelector.Name, doc.Properties.Properties[0].Name)

	_, err = os.Stat(filepath.Join(dir, "RHEL9-testcases.xml"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteAll_InvalidProject(t *testing.T) {
	b := newTestBuilder(t, Options{})
	_, err := WriteAll(context.Background(), t.TempDir(), map[string][]reconciler.QueueEntry{
		"../evil": {{Identity: "pkg.T", Record: loginRecord()}},
	}, b)
	assert.Error(t, err)
}
