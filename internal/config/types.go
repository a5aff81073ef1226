package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config is the top-level configuration structure for polarizer.
//
// Files are decoded through their JSON tags whether they are written in JSON
// or YAML. Fields with an env tag can be overridden from the environment.
type Config struct {
	Project         string          `json:"project,omitempty" env:"POLARIZER_PROJECT"`
	Author          string          `json:"author,omitempty" env:"POLARIZER_AUTHOR"`
	Mapping         string          `json:"mapping" env:"POLARIZER_MAPPING"`                   // Path of the identifier mapping JSON file
	DefinitionsPath string          `json:"definitions-path" env:"POLARIZER_DEFINITIONS_PATH"` // Definition YAML file or directory
	Packages        []string        `json:"packages,omitempty"`
	Servers         Servers         `json:"servers,omitempty"`
	TestCase        TestCaseConfig  `json:"testcase"`
	Transport       TransportConfig `json:"transport"`
	OutputDir       string          `json:"output-dir,omitempty" env:"POLARIZER_OUTPUT_DIR"` // Where export documents are written (default: .)

	// path is the file the configuration was loaded from
	path string
}

// Path returns the file the configuration was loaded from, if any.
func (c Config) Path() string {
	return c.path
}

// Servers lists the remote servers the importer talks to.
type Servers struct {
	Polarion Server `json:"polarion"`
}

// Server holds the address and credentials of a remote server.
type Server struct {
	URL      string `json:"url,omitempty" env:"POLARIZER_POLARION_URL"`
	User     string `json:"user,omitempty" env:"POLARIZER_POLARION_USER"`
	Domain   string `json:"domain,omitempty"`
	Password string `json:"password,omitempty" env:"POLARIZER_POLARION_PASSWORD"`
}

// TestCaseConfig configures the test case import on the remote side.
type TestCaseConfig struct {
	Endpoint string         `json:"endpoint,omitempty"`             // Import endpoint path (default: /import/testcase)
	Timeout  int            `json:"timeout,omitempty"`              // Remote import timeout in milliseconds (default: 300000)
	Enabled  bool           `json:"enabled" env:"IMPORTER_ENABLED"` // Whether import delivers documents (default: true)
	Selector SelectorConfig `json:"selector"`                       // Name/value pair identifying the import batch
	Title    TitleConfig    `json:"title,omitempty"`                // Templates wrapped around every exported title
}

// SelectorConfig is the name/value pair the remote uses to route responses.
type SelectorConfig struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TitleConfig holds title templates. Both are Go templates with sprig
// functions, rendered over Project, Title and ID.
type TitleConfig struct {
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// Transport kinds.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
	TransportExec      = "exec"
)

// TransportConfig selects how export documents reach the remote service.
type TransportConfig struct {
	Kind         string   `json:"kind,omitempty" env:"POLARIZER_TRANSPORT"`    // http, websocket or exec (default: http)
	URL          string   `json:"url,omitempty" env:"POLARIZER_TRANSPORT_URL"` // Endpoint for http and websocket
	Command      []string `json:"command,omitempty"`                           // Program and arguments for exec
	MaxAttempts  int      `json:"max-attempts,omitempty"`                      // Response polls before giving up (default: 30)
	PollInterval Duration `json:"poll-interval,omitempty"`                     // Wait per poll (default: 2s)
}

// Duration is a time.Duration that decodes from "2s" style strings or from a
// number of milliseconds.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.UnmarshalText([]byte(s))
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	d.Duration = time.Duration(ms) * time.Millisecond
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalText parses a duration string. A bare integer is milliseconds.
func (d *Duration) UnmarshalText(b []byte) error {
	s := string(b)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		d.Duration = time.Duration(ms) * time.Millisecond
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// TransportURL returns the endpoint the http and websocket transports talk
// to: transport.url when set, otherwise the Polarion server URL joined with
// the test case endpoint. For websocket the scheme becomes ws or wss.
func (c Config) TransportURL() string {
	url := c.Transport.URL
	if url == "" && c.Servers.Polarion.URL != "" {
		url = strings.TrimRight(c.Servers.Polarion.URL, "/") + "/" + strings.TrimLeft(c.TestCase.Endpoint, "/")
	}
	if c.Transport.Kind == TransportWebSocket {
		switch {
		case strings.HasPrefix(url, "https://"):
			url = "wss://" + strings.TrimPrefix(url, "https://")
		case strings.HasPrefix(url, "http://"):
			url = "ws://" + strings.TrimPrefix(url, "http://")
		}
	}
	return url
}

// ImportTimeout is testcase.timeout as a duration.
func (c Config) ImportTimeout() time.Duration {
	return time.Duration(c.TestCase.Timeout) * time.Millisecond
}
