package definitions

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polarizer/internal/mapping"
	"polarizer/internal/testcase"
)

const sampleDefinitions = `pkg.TestLogin:
  RHEL7:
    testcase:
      id: ""
      title: Login works
      description: Logs in with valid credentials
      test-steps:
        - parameters:
            - name: user
              scope: local
      custom-fields:
        importance: high
        tags: auth,smoke
  RHEL8:
    testcase:
      id: RHEL8-12
      title: Login works
      description: Logs in with valid credentials
pkg.TestLogout:
  RHEL7:
    testcase:
      id: RHEL7-4
      title: Logout works
      description: Logs out
      update: true
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mapping.ErrStoreNotFound))
}

func TestLoad_InvalidEnum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.yaml")
	writeFile(t, path, "pkg.T:\n  P:\n    testcase:\n      custom-fields:\n        caselevel: galactic\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "galactic")
}

func TestLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.yaml")
	writeFile(t, path, sampleDefinitions)

	s, err := Load(path)
	require.NoError(t, err)

	rec, err := s.Lookup("pkg.TestLogin", "RHEL7")
	require.NoError(t, err)
	assert.Equal(t, "", rec.ID)
	assert.Equal(t, "RHEL7", rec.Project, "project is filled from the key")
	assert.Equal(t, "Login works", rec.Title)
	assert.Equal(t, testcase.ImportanceHigh, rec.CustomFields.Importance)
	assert.Equal(t, []string{"user"}, rec.ParamNames())

	logout, err := s.Lookup("pkg.TestLogout", "RHEL7")
	require.NoError(t, err)
	assert.True(t, logout.Update)

	_, err = s.Lookup("pkg.TestLogout", "RHEL8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLookupMissing))

	var missing *LookupMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "RHEL8", missing.Project)

	assert.Equal(t, []string{"RHEL7", "RHEL8"}, s.Projects("pkg.TestLogin"))
	assert.Empty(t, s.Projects("pkg.Unknown"))
}

func TestLookup_AmbiguousPicksFirstFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "pkg.T:\n  P:\n    testcase:\n      title: from a\n")
	writeFile(t, filepath.Join(dir, "b.yml"), "pkg.T:\n  P:\n    testcase:\n      title: from b\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, s.Files(), 2)

	rec, err := s.Lookup("pkg.T", "P")
	require.NoError(t, err)
	assert.Equal(t, "from a", rec.Title)

	entries := s.Entries()
	require.Len(t, entries, 1, "shadowed duplicates are not listed")
	assert.Equal(t, filepath.Join(dir, "a.yaml"), entries[0].Path)
}

func TestEntries_Sorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.yaml")
	writeFile(t, path, sampleDefinitions)

	s, err := Load(path)
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, 3)
	got := make([][2]string, len(entries))
	for i, e := range entries {
		got[i] = [2]string{e.Identity, e.Project}
	}
	assert.Equal(t, [][2]string{
		{"pkg.TestLogin", "RHEL7"},
		{"pkg.TestLogin", "RHEL8"},
		{"pkg.TestLogout", "RHEL7"},
	}, got)
}

func TestSetID_Persists(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yaml")
	second := filepath.Join(dir, "b.yaml")
	writeFile(t, first, sampleDefinitions)
	writeFile(t, second, "pkg.Other:\n  P:\n    testcase:\n      title: other\n")

	s, err := Load(dir)
	require.NoError(t, err)

	before, err := os.ReadFile(second)
	require.NoError(t, err)

	require.NoError(t, s.SetID("pkg.TestLogin", "RHEL7", "RHEL7-99"))

	reloaded, err := Load(dir)
	require.NoError(t, err)
	rec, err := reloaded.Lookup("pkg.TestLogin", "RHEL7")
	require.NoError(t, err)
	assert.Equal(t, "RHEL7-99", rec.ID)
	assert.Equal(t, "auth,smoke", rec.CustomFields.Tags)

	after, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "untouched files are not rewritten")

	err = s.SetID("pkg.Nope", "RHEL7", "X")
	assert.True(t, errors.Is(err, ErrLookupMissing))
}

func TestLoad_EmptyAndNullEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty.yaml"), "")
	writeFile(t, filepath.Join(dir, "null.yaml"), "pkg.T:\n  P:\n")

	s, err := Load(dir)
	require.NoError(t, err)

	rec, err := s.Lookup("pkg.T", "P")
	require.NoError(t, err)
	assert.Equal(t, "P", rec.Project)
}

func TestIsDefinitionFile(t *testing.T) {
	assert.True(t, IsDefinitionFile("a/b.yaml"))
	assert.True(t, IsDefinitionFile("B.YML"))
	assert.False(t, IsDefinitionFile("mapping.json"))
}

func TestSetID_OnlyTouchesTheID(t *testing.T) {
	original := `# owned by QE
pkg.TestLogin:
  P:
    testcase:
      id: ""
      title: Login works
      setup: "start server"
pkg.TestOther:
  P:
    testcase:
      id: P-7
      title: Other
`
	path := filepath.Join(t.TempDir(), "defs.yaml")
	writeFile(t, path, original)

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.SetID("pkg.TestLogin", "P", "P-42"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	want := strings.Replace(original, `id: ""`, `id: "P-42"`, 1)
	assert.Equal(t, want, string(raw))
	assert.NotContains(t, string(raw), "project:")

	rec, err := s.Lookup("pkg.TestLogin", "P")
	require.NoError(t, err)
	assert.Equal(t, "P-42", rec.ID)
	assert.Equal(t, "P", rec.Project)
}

func TestSetID_AddsMissingIDKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.yaml")
	writeFile(t, path, "pkg.TestLogin:\n  P:\n    testcase:\n      title: Login works\npkg.TestBare:\n  P:\n")

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.SetID("pkg.TestLogin", "P", "P-1"))
	require.NoError(t, s.SetID("pkg.TestBare", "P", "P-2"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	for identity, want := range map[string]string{"pkg.TestLogin": "P-1", "pkg.TestBare": "P-2"} {
		rec, err := reloaded.Lookup(identity, "P")
		require.NoError(t, err)
		assert.Equal(t, want, rec.ID, identity)
	}

	rec, err := reloaded.Lookup("pkg.TestLogin", "P")
	require.NoError(t, err)
	assert.Equal(t, "Login works", rec.Title)
}
