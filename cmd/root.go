package cmd

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"polarizer/internal/app"
	"polarizer/internal/config"
	"polarizer/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigNotFound indicates that no configuration file was found.
	ExitCodeConfigNotFound = 2
)

// Global flags shared by every subcommand.
var (
	configPath string
	debug      bool
	silent     bool
	logLevel   string
)

// rootCmd represents the base command for the polarizer application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "polarizer",
	Short: "Keep test case metadata in sync with Polarion",
	Long: `polarizer keeps the test case definitions of a test suite consistent with
the identifiers Polarion assigned to them.

It reconciles the identifier mapping file with the definition files, builds
the XML import document for test cases that do not exist remotely yet and
delivers it to the importer.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// A .env file in the working directory is loaded first when present.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "polarizer version %s\n" .Version}}`)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Bootstrap", "Could not load .env file: %v", err)
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if errors.Is(err, config.ErrConfigurationNotFound) {
		return ExitCodeConfigNotFound
	}
	return ExitCodeError
}

// newApplication builds the application from the global flags.
func newApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg := app.NewConfig(debug, silent, configPath)
	cfg.LogLevel = logLevel
	cfg.LogOutput = cmd.ErrOrStderr()
	return app.NewApplication(cfg)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: $"+config.EnvConfigPath+" or ~/.polarizer/polarizer-testcase.{json,yaml,yml})")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "Discard all log output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newWatchCmd())
}
