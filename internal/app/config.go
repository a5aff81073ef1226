package app

import (
	"io"

	"polarizer/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug enables debug logging
	Debug bool

	// Silent discards all log output
	Silent bool

	// LogLevel is the --log-level flag value. Debug wins over it.
	LogLevel string

	// ConfigPath is the --config flag value. Empty means the usual lookup.
	ConfigPath string

	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer

	// Settings, when set, is used instead of loading a configuration file
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(debug, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
	}
}
