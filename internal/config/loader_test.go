package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `project: RHEL7
author: ci-bot
mapping: mapping.json
definitions-path: /abs/definitions
packages:
  - example.com/suite
servers:
  polarion:
    url: https://polarion.example.com
    user: ci-bot
testcase:
  enabled: false
  title:
    prefix: "[{{ .Project }}] "
transport:
  kind: websocket
  url: wss://importer.example.com/ws
  max-attempts: 5
  poll-interval: 250ms
`

const jsonConfig = `{
  "project": "RHEL8",
  "mapping": "/abs/mapping.json",
  "definitions-path": "defs.yaml",
  "servers": {"polarion": {"url": "https://polarion.example.com"}},
  "transport": {"poll-interval": 1500}
}`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// isolate keeps tests from picking up a real user configuration.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	original := osUserHomeDir
	osUserHomeDir = func() (string, error) { return home, nil }
	t.Cleanup(func() { osUserHomeDir = original })
	t.Setenv(EnvConfigPath, "")
	return home
}

func TestLoadFile_YAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "polarizer.yaml", yamlConfig)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "RHEL7", cfg.Project)
	assert.Equal(t, filepath.Join(dir, "mapping.json"), cfg.Mapping, "relative paths resolve against the file")
	assert.Equal(t, "/abs/definitions", cfg.DefinitionsPath)
	assert.Equal(t, []string{"example.com/suite"}, cfg.Packages)
	assert.False(t, cfg.TestCase.Enabled)
	assert.Equal(t, "[{{ .Project }}] ", cfg.TestCase.Title.Prefix)
	assert.Equal(t, TransportWebSocket, cfg.Transport.Kind)
	assert.Equal(t, 5, cfg.Transport.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Transport.PollInterval.Duration)
	assert.Equal(t, path, cfg.Path())

	// defaults survive for keys the file leaves out
	assert.Equal(t, DefaultEndpoint, cfg.TestCase.Endpoint)
	assert.Equal(t, DefaultSelectorName, cfg.TestCase.Selector.Name)
	assert.Equal(t, filepath.Join(dir, DefaultOutputDir), cfg.OutputDir)
}

func TestLoadFile_JSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "polarizer.json", jsonConfig)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "RHEL8", cfg.Project)
	assert.Equal(t, "/abs/mapping.json", cfg.Mapping)
	assert.Equal(t, filepath.Join(dir, "defs.yaml"), cfg.DefinitionsPath)
	assert.True(t, cfg.TestCase.Enabled)
	assert.Equal(t, TransportHTTP, cfg.Transport.Kind)
	assert.Equal(t, DefaultMaxAttempts, cfg.Transport.MaxAttempts)
	assert.Equal(t, 1500*time.Millisecond, cfg.Transport.PollInterval.Duration)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "polarizer.yaml", yamlConfig)

	t.Setenv("POLARIZER_MAPPING", "/env/mapping.json")
	t.Setenv("POLARIZER_PROJECT", "RHEL9")
	t.Setenv("IMPORTER_ENABLED", "true")
	t.Setenv("POLARIZER_TRANSPORT", "http")
	t.Setenv("POLARIZER_TRANSPORT_URL", "https://importer.example.com/import")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/env/mapping.json", cfg.Mapping)
	assert.Equal(t, "RHEL9", cfg.Project)
	assert.True(t, cfg.TestCase.Enabled)
	assert.Equal(t, TransportHTTP, cfg.Transport.Kind)
	assert.Equal(t, "https://importer.example.com/import", cfg.Transport.URL)
	assert.Equal(t, "/abs/definitions", cfg.DefinitionsPath, "unset variables leave the file value")
}

func TestLoadFile_RelativeEnvPaths(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		mapping string
		defs    string
		output  string
	}{
		{
			name:    "file values",
			mapping: "mapping.json",
			defs:    "/abs/definitions",
			output:  ".",
		},
		{
			name:    "relative overrides follow the file",
			env:     map[string]string{"POLARIZER_MAPPING": "env/mapping.json", "POLARIZER_DEFINITIONS_PATH": "defs", "POLARIZER_OUTPUT_DIR": "out"},
			mapping: "env/mapping.json",
			defs:    "defs",
			output:  "out",
		},
		{
			name:    "absolute overrides are kept",
			env:     map[string]string{"POLARIZER_MAPPING": "/env/mapping.json"},
			mapping: "/env/mapping.json",
			defs:    "/abs/definitions",
			output:  ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			path := writeConfig(t, dir, "polarizer.yaml", yamlConfig)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadFile(path)
			require.NoError(t, err)

			abs := func(p string) string {
				if filepath.IsAbs(p) {
					return p
				}
				return filepath.Join(dir, p)
			}
			assert.Equal(t, abs(tt.mapping), cfg.Mapping)
			assert.Equal(t, abs(tt.defs), cfg.DefinitionsPath)
			assert.Equal(t, abs(tt.output), cfg.OutputDir)
		})
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "bad.yaml", "project: [unterminated\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoadFile_ValidationCollectsAllErrors(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "empty.yaml", "transport:\n  kind: carrier-pigeon\n  max-attempts: -1\n")

	_, err := LoadFile(path)
	require.Error(t, err)

	var errs *ConfigurationErrorCollection
	require.True(t, errors.As(err, &errs))
	fields := make([]string, 0, errs.Count())
	for _, e := range errs.Errors {
		fields = append(fields, e.Field)
		assert.Equal(t, path, e.FilePath)
	}
	assert.ElementsMatch(t, []string{"mapping", "definitions-path", "transport.kind", "transport.max-attempts"}, fields)
	assert.Contains(t, errs.GetDetailedReport(), "POLARIZER_MAPPING")
}

func TestLocate(t *testing.T) {
	home := isolate(t)

	_, err := Locate("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigurationNotFound))
	var notFound *ConfigurationNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Len(t, notFound.Searched, 3)

	yml := writeConfig(t, home, filepath.Join(userConfigDir, configBaseName+".yml"), yamlConfig)
	path, err := Locate("")
	require.NoError(t, err)
	assert.Equal(t, yml, path)

	jsonPath := writeConfig(t, home, filepath.Join(userConfigDir, configBaseName+".json"), jsonConfig)
	path, err = Locate("")
	require.NoError(t, err)
	assert.Equal(t, jsonPath, path, ".json is preferred over .yml")

	fromEnv := writeConfig(t, t.TempDir(), "env.yaml", yamlConfig)
	t.Setenv(EnvConfigPath, fromEnv)
	path, err = Locate("")
	require.NoError(t, err)
	assert.Equal(t, fromEnv, path)

	explicit := writeConfig(t, t.TempDir(), "explicit.yaml", yamlConfig)
	path, err = Locate(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)

	_, err = Locate(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrConfigurationNotFound), "an explicit path is not silently replaced")
}

func TestImportArgs(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Project = "RHEL7"
	cfg.Author = "ci-bot"
	cfg.Mapping = "/tmp/mapping.json"

	raw, err := cfg.ImportArgs("RHEL8")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "RHEL8", decoded["project"])
	assert.Equal(t, "ci-bot", decoded["author"])
	assert.Equal(t, []interface{}{}, decoded["packages"])

	testcase := decoded["testcase"].(map[string]interface{})
	assert.Equal(t, DefaultEndpoint, testcase["endpoint"])
	assert.Equal(t, true, testcase["enabled"])
	selector := testcase["selector"].(map[string]interface{})
	assert.Equal(t, DefaultSelectorValue, selector["value"])

	raw, err = cfg.ImportArgs("")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "RHEL7", decoded["project"])
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("3s")))
	assert.Equal(t, 3*time.Second, d.Duration)

	require.NoError(t, d.UnmarshalText([]byte("40")))
	assert.Equal(t, 40*time.Millisecond, d.Duration)

	assert.Error(t, d.UnmarshalText([]byte("soon")))

	out, err := json.Marshal(Duration{2 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}

func TestTransportURL(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Empty(t, cfg.TransportURL())

	cfg.Servers.Polarion.URL = "https://polarion.example.com/"
	assert.Equal(t, "https://polarion.example.com/import/testcase", cfg.TransportURL())

	cfg.Transport.Kind = TransportWebSocket
	assert.Equal(t, "wss://polarion.example.com/import/testcase", cfg.TransportURL())

	cfg.Transport.URL = "http://localhost:9000/ws"
	assert.Equal(t, "ws://localhost:9000/ws", cfg.TransportURL())

	cfg.Transport.Kind = TransportHTTP
	assert.Equal(t, "http://localhost:9000/ws", cfg.TransportURL())

	assert.Equal(t, 300*time.Second, cfg.ImportTimeout())
}
