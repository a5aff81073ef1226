package formatting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Identity string `json:"identity"`
	State    string `json:"state"`
}

func sampleView() View {
	return View{
		Title:   "Status",
		Headers: []string{"identity", "state"},
		Rows: [][]string{
			{"pkg.TestLogin", "BothSet"},
			{"pkg.TestLogout", "BothMissing"},
		},
		Footer: "2 pairs",
		Data: []row{
			{Identity: "pkg.TestLogin", State: "BothSet"},
			{Identity: "pkg.TestLogout", State: "BothMissing"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "plain", "json", "yaml"} {
		f, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(in), f)
	}

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, New(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, New(Options{Format: FormatYAML}))
	assert.IsType(t, &ConsoleFormatter{}, New(Options{Format: FormatConsole}))
	assert.IsType(t, &TableFormatter{}, New(Options{}))
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := New(Options{Format: FormatTable, Output: &buf}).Format(sampleView())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "IDENTITY")
	assert.Contains(t, out, "pkg.TestLogout")
	assert.Contains(t, out, "BothMissing")
	assert.Contains(t, out, "2 pairs")
	assert.Contains(t, out, "╭", "rounded style")
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Options{Output: &buf}).Format(View{Headers: []string{"identity"}}))
	assert.Equal(t, "No entries found\n", buf.String())
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Options{Format: FormatConsole, Output: &buf}).Format(sampleView()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "IDENTITY         STATE", lines[0])
	assert.Equal(t, "pkg.TestLogin    BothSet", lines[1])
	assert.Equal(t, "pkg.TestLogout   BothMissing", lines[2])

	buf.Reset()
	require.NoError(t, New(Options{Format: FormatConsole, Quiet: true, Output: &buf}).Format(sampleView()))
	assert.NotContains(t, buf.String(), "IDENTITY")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Options{Format: FormatJSON, Output: &buf}).Format(sampleView()))

	var decoded []row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleView().Data, decoded)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Options{Format: FormatYAML, Output: &buf}).Format(sampleView()))

	assert.Equal(t, "- identity: pkg.TestLogin\n  state: BothSet\n- identity: pkg.TestLogout\n  state: BothMissing\n", buf.String())
}
