package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polarizer/internal/config"
	"polarizer/internal/definitions"
	"polarizer/internal/mapping"
	"polarizer/internal/transport"
)

const testDefinitions = `pkg.Suite.TestLogin:
  RHEL7:
    testcase:
      id: ""
      title: Login works
      description: Logs in with valid credentials
      test-steps:
        - parameters:
            - name: user
pkg.Suite.TestLogout:
  RHEL7:
    testcase:
      id: ""
      title: Logout works
      description: Logs out
      test-steps:
        - parameters:
            - name: user
`

const testMapping = `{
  "pkg.Suite.TestLogout": {
    "RHEL7": {
      "id": "RHEL7-7",
      "params": ["user"]
    }
  }
}
`

type workspace struct {
	dir      string
	settings config.Config
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()

	settings := config.GetDefaultConfig()
	settings.Project = "RHEL7"
	settings.Mapping = filepath.Join(dir, "mapping.json")
	settings.DefinitionsPath = filepath.Join(dir, "definitions")
	settings.OutputDir = filepath.Join(dir, "out")

	require.NoError(t, os.MkdirAll(settings.DefinitionsPath, 0755))
	require.NoError(t, os.WriteFile(settings.Mapping, []byte(testMapping), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(settings.DefinitionsPath, "login.yaml"), []byte(testDefinitions), 0644))

	return &workspace{dir: dir, settings: settings}
}

func (w *workspace) services(t *testing.T) *Services {
	t.Helper()
	cfg := NewConfig(false, true, "")
	cfg.Settings = &w.settings
	application, err := NewApplication(cfg)
	require.NoError(t, err)
	return application.Services()
}

func (w *workspace) definitionID(t *testing.T, identity string) string {
	t.Helper()
	store, err := definitions.Load(w.settings.DefinitionsPath)
	require.NoError(t, err)
	rec, err := store.Lookup(identity, "RHEL7")
	require.NoError(t, err)
	return rec.ID
}

func TestNewApplication_MissingStore(t *testing.T) {
	w := newWorkspace(t)
	w.settings.Mapping = filepath.Join(w.dir, "missing.json")

	cfg := NewConfig(false, true, "")
	cfg.Settings = &w.settings
	_, err := NewApplication(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mapping.ErrStoreNotFound))
}

func TestNewApplication_ConfigNotFound(t *testing.T) {
	_, err := NewApplication(NewConfig(false, true, filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigurationNotFound))
}

func TestNewApplication_FromConfigFile(t *testing.T) {
	w := newWorkspace(t)
	path := filepath.Join(w.dir, "polarizer.yaml")
	content := "project: RHEL7\nmapping: mapping.json\ndefinitions-path: definitions\n" +
		"servers:\n  polarion:\n    url: https://polarion.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	application, err := NewApplication(NewConfig(true, true, path))
	require.NoError(t, err)

	s := application.Services()
	assert.Equal(t, w.settings.Mapping, s.Mapping().Path())
	assert.Equal(t, "https://polarion.example.com/import/testcase", s.Config.TransportURL())

	tr, err := s.Transport()
	require.NoError(t, err)
	assert.IsType(t, &transport.HTTPTransport{}, tr)
}

func TestNewApplication_InvalidTitleTemplate(t *testing.T) {
	w := newWorkspace(t)
	w.settings.TestCase.Title.Prefix = "{{ .Project "

	cfg := NewConfig(false, true, "")
	cfg.Settings = &w.settings
	_, err := NewApplication(cfg)
	assert.Error(t, err)
}

func TestServices_Reconcile(t *testing.T) {
	w := newWorkspace(t)
	s := w.services(t)

	results, err := s.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "RHEL7-7", w.definitionID(t, "pkg.Suite.TestLogout"))
	assert.True(t, s.Queue.Contains("RHEL7", "pkg.Suite.TestLogin"))

	entry, ok := s.Mapping().Get("pkg.Suite.TestLogin", "RHEL7")
	require.True(t, ok)
	assert.Equal(t, []string{"user"}, entry.Params)
	assert.Equal(t, int64(1), s.Metrics.GetSummary().Passes)
}

func TestServices_Export(t *testing.T) {
	w := newWorkspace(t)
	s := w.services(t)

	batches, err := s.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"pkg.Suite.TestLogin"}, batches[0].Exported)
	assert.Zero(t, s.Queue.Len(), "exported records leave the queue")

	doc, err := os.ReadFile(filepath.Join(w.settings.OutputDir, "RHEL7-testcases.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), `<testcases project-id="RHEL7">`)
	assert.Contains(t, string(doc), "<title>Login works</title>")
	assert.NotContains(t, string(doc), "Logout works")
}

func TestServices_Export_NothingQueued(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, os.WriteFile(w.settings.Mapping,
		[]byte(`{"pkg.Suite.TestLogin":{"RHEL7":{"id":"RHEL7-1","params":["user"]}},"pkg.Suite.TestLogout":{"RHEL7":{"id":"RHEL7-7","params":["user"]}}}`), 0644))
	s := w.services(t)

	batches, err := s.Export(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batches)
	_, err = os.Stat(filepath.Join(w.settings.OutputDir, "RHEL7-testcases.xml"))
	assert.True(t, os.IsNotExist(err))
}

func importServer(t *testing.T, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		file, _, err := r.FormFile(transport.PartTestCase)
		if !assert.NoError(t, err) {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(file)
		assert.Contains(t, string(body), "Login works")

		args, _, err := r.FormFile(transport.PartArgs)
		if assert.NoError(t, err) {
			raw, _ := io.ReadAll(args)
			assert.Contains(t, string(raw), "RHEL7")
		}

		_, _ = rw.Write([]byte(`{"mapping":{"pkg.Suite.TestLogin":{"RHEL7":{"id":"RHEL7-100","params":["user"]}}}}`))
	}))
}

func TestServices_Import(t *testing.T) {
	w := newWorkspace(t)
	var hits int32
	server := importServer(t, &hits)
	defer server.Close()
	w.settings.Transport.URL = server.URL

	s := w.services(t)
	tr, err := s.Transport()
	require.NoError(t, err)

	var progressed []string
	results, err := s.Import(context.Background(), tr, func(project string) {
		progressed = append(progressed, project)
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Delivered)
	assert.Equal(t, 1, results[0].Merged)
	assert.Equal(t, []string{"RHEL7"}, progressed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	reloaded, err := mapping.Load(w.settings.Mapping)
	require.NoError(t, err)
	entry, ok := reloaded.Get("pkg.Suite.TestLogin", "RHEL7")
	require.True(t, ok)
	assert.Equal(t, "RHEL7-100", entry.ID)

	assert.Equal(t, "RHEL7-100", w.definitionID(t, "pkg.Suite.TestLogin"), "returned ids reach the definitions")
	assert.Zero(t, s.Queue.Len())
}

func TestServices_ImportDisabled(t *testing.T) {
	w := newWorkspace(t)
	var hits int32
	server := importServer(t, &hits)
	defer server.Close()
	w.settings.Transport.URL = server.URL
	w.settings.TestCase.Enabled = false

	s := w.services(t)
	tr, err := s.Transport()
	require.NoError(t, err)

	results, err := s.Import(context.Background(), tr, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Delivered)
	assert.NotEmpty(t, results[0].Path, "the document is still written")
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestServices_ImportFailure(t *testing.T) {
	w := newWorkspace(t)
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()
	w.settings.Transport.URL = server.URL

	s := w.services(t)
	tr, err := s.Transport()
	require.NoError(t, err)

	results, err := s.Import(context.Background(), tr, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance")
	require.Len(t, results, 1)
	assert.False(t, results[0].Delivered)
	assert.Error(t, results[0].Err)
}

func TestServices_Watch(t *testing.T) {
	w := newWorkspace(t)
	s := w.services(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// the initial pass creates the missing mapping entry
	require.Eventually(t, func() bool {
		raw, err := os.ReadFile(w.settings.Mapping)
		return err == nil && strings.Contains(string(raw), "pkg.Suite.TestLogin")
	}, 5*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)

	// an id assigned by hand in the mapping reaches the definitions
	require.NoError(t, os.WriteFile(w.settings.Mapping,
		[]byte(`{"pkg.Suite.TestLogin":{"RHEL7":{"id":"RHEL7-55","params":["user"]}},"pkg.Suite.TestLogout":{"RHEL7":{"id":"RHEL7-7","params":["user"]}}}`), 0644))

	require.Eventually(t, func() bool {
		store, err := definitions.Load(w.settings.DefinitionsPath)
		if err != nil {
			return false
		}
		rec, err := store.Lookup("pkg.Suite.TestLogin", "RHEL7")
		return err == nil && rec.ID == "RHEL7-55"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
}
