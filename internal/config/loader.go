package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"sigs.k8s.io/yaml"

	"polarizer/pkg/logging"
)

const (
	// EnvConfigPath names the environment variable holding the config file path
	EnvConfigPath = "POLARIZER_TESTCASE_CONFIG"

	userConfigDir  = ".polarizer"
	configBaseName = "polarizer-testcase"
)

// configExtensions are tried in order in the user config directory.
var configExtensions = []string{".json", ".yaml", ".yml"}

// osUserHomeDir is a variable so tests can point it elsewhere.
var osUserHomeDir = os.UserHomeDir

// Locate returns the configuration file to use. An explicit path wins, then
// the EnvConfigPath variable, then ~/.polarizer/polarizer-testcase with a
// .json, .yaml or .yml extension.
func Locate(explicit string) (string, error) {
	var searched []string

	candidates := func() []string {
		if explicit != "" {
			return []string{explicit}
		}
		if fromEnv := os.Getenv(EnvConfigPath); fromEnv != "" {
			return []string{fromEnv}
		}
		home, err := osUserHomeDir()
		if err != nil {
			logging.Warn("Config", "Could not determine home directory: %v", err)
			return nil
		}
		paths := make([]string, 0, len(configExtensions))
		for _, ext := range configExtensions {
			paths = append(paths, filepath.Join(home, userConfigDir, configBaseName+ext))
		}
		return paths
	}()

	for _, path := range candidates {
		searched = append(searched, path)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", &ConfigurationNotFoundError{Searched: searched}
}

// Load locates, reads, overrides from the environment and validates the
// configuration.
func Load(explicit string) (Config, error) {
	path, err := Locate(explicit)
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path and applies environment overrides.
// Relative store and output paths, including ones set from the environment,
// are then resolved against the file's directory and the result is validated.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, &ConfigurationNotFoundError{Searched: []string{path}}
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	cfg.path = path

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.resolvePaths(filepath.Dir(path))

	if errs := cfg.Validate(); errs.HasErrors() {
		for i := range errs.Errors {
			errs.Errors[i].FilePath = path
		}
		return Config{}, errs
	}

	logging.Info("Config", "Loaded configuration from %s", path)
	return cfg, nil
}

// Parse decodes a JSON or YAML document on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields that have an env tag from the environment.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Mapping = resolve(c.Mapping)
	c.DefinitionsPath = resolve(c.DefinitionsPath)
	c.OutputDir = resolve(c.OutputDir)
}

// importArgs is the arguments document sent alongside an export document.
type importArgs struct {
	Project  string         `json:"project"`
	Author   string         `json:"author,omitempty"`
	Packages []string       `json:"packages"`
	Servers  Servers        `json:"servers"`
	Mapping  string         `json:"mapping"`
	TestCase TestCaseConfig `json:"testcase"`
}

// ImportArgs returns the JSON arguments payload for project.
func (c Config) ImportArgs(project string) ([]byte, error) {
	if project == "" {
		project = c.Project
	}
	packages := c.Packages
	if packages == nil {
		packages = []string{}
	}
	return json.MarshalIndent(importArgs{
		Project:  project,
		Author:   c.Author,
		Packages: packages,
		Servers:  c.Servers,
		Mapping:  c.Mapping,
		TestCase: c.TestCase,
	}, "", "  ")
}
