package config

import "time"

const (
	// DefaultEndpoint is the default remote import endpoint
	DefaultEndpoint = "/import/testcase"

	// DefaultTimeout is the default remote import timeout in milliseconds
	DefaultTimeout = 300000

	// DefaultSelectorName and DefaultSelectorValue identify batches built here
	DefaultSelectorName  = "polarizer"
	DefaultSelectorValue = "testcase_importer"

	// DefaultMaxAttempts bounds how often a transport polls for a response
	DefaultMaxAttempts = 30

	// DefaultPollInterval is the wait between response polls
	DefaultPollInterval = 2 * time.Second

	// DefaultOutputDir is where export documents are written
	DefaultOutputDir = "."
)

// GetDefaultConfig returns the default configuration. Paths to the stores
// have no default and must come from the file or the environment.
func GetDefaultConfig() Config {
	return Config{
		TestCase: TestCaseConfig{
			Endpoint: DefaultEndpoint,
			Timeout:  DefaultTimeout,
			Enabled:  true,
			Selector: SelectorConfig{
				Name:  DefaultSelectorName,
				Value: DefaultSelectorValue,
			},
		},
		Transport: TransportConfig{
			Kind:         TransportHTTP,
			MaxAttempts:  DefaultMaxAttempts,
			PollInterval: Duration{DefaultPollInterval},
		},
		OutputDir: DefaultOutputDir,
	}
}
