package app

import (
	"fmt"
	"io"
	"os"

	"polarizer/internal/config"
	"polarizer/pkg/logging"
)

// Application ties the loaded configuration to the services built from it.
//
// Initialization happens in NewApplication: logging, configuration, then the
// stores and everything that depends on them. The commands then call the
// pipeline methods of Services.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication configures logging, loads the configuration and opens both
// stores. A missing configuration file is a ConfigurationNotFoundError and a
// missing store is a StoreNotFoundError; both are fatal.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.LogLevel != "" {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		appLogLevel = level
	}
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	var logOutput io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.InitForCLI(appLogLevel, logOutput)

	var settings config.Config
	if cfg.Settings != nil {
		settings = *cfg.Settings
	} else {
		var err error
		settings, err = config.Load(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Info("Bootstrap", "Loaded configuration from %s", settings.Path())
	}

	services, err := InitializeServices(settings)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}
