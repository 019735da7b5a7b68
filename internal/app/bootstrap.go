package app

import (
	"context"
	"fmt"
	"os"

	"bsprep/internal/capabilities"
	"bsprep/internal/config"
	"bsprep/internal/session"
	"bsprep/pkg/logging"
)

// Application is the main application structure that bootstraps a session
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance.
// Settings and Env already present on cfg are used as is.
func NewApplication(cfg *Config) (*Application, error) {
	// Configure logging based on debug flag
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	// Logs go to stderr, stdout carries the prepared capabilities
	logging.InitForCLI(appLogLevel, os.Stderr)

	if cfg.Settings == nil {
		settings, err := loadSettings(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Settings = &settings
	}

	if err := configureLogging(cfg); err != nil {
		return nil, err
	}

	if cfg.Env == nil {
		env, err := config.LoadEnvironment()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to read environment")
			return nil, err
		}
		cfg.Env = &env
	}

	applyCredentialFallback(cfg.Settings, cfg.Env)

	// Initialize services
	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func loadSettings(path string) (config.Config, error) {
	if path != "" {
		settings, err := config.LoadConfigFromPath(path)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", path)
			return config.Config{}, fmt.Errorf("failed to load configuration from path %s: %w", path, err)
		}
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", path)
		return settings, nil
	}

	settings, err := config.LoadConfig()
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	return settings, nil
}

// configureLogging re-initializes logging with the configured level and
// format. The --debug flag wins over the configured level.
func configureLogging(cfg *Config) error {
	level, err := logging.ParseLevel(cfg.Settings.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	if cfg.Debug {
		level = logging.LevelDebug
	}

	format := logging.FormatText
	switch cfg.Settings.Logging.Format {
	case "", string(logging.FormatText):
	case string(logging.FormatJSON):
		format = logging.FormatJSON
	default:
		return fmt.Errorf("invalid logging configuration: unknown format %q", cfg.Settings.Logging.Format)
	}

	logging.Init(level, format, os.Stderr)
	return nil
}

func applyCredentialFallback(settings *config.Config, env *config.Environment) {
	if settings.User == "" {
		settings.User = env.Username
	}
	if settings.Key == "" {
		settings.Key = env.AccessKey
	}
}

// NewPreparer creates a session preparer for caps wired to the application's
// services.
func (a *Application) NewPreparer(caps *capabilities.Container) *session.Preparer {
	settings, env := a.config.Settings, a.config.Env

	deps := session.Deps{
		Apps:   a.services.Apps,
		Builds: a.services.Builds,
	}
	if a.services.Tunnel != nil {
		deps.Tunnel = a.services.Tunnel
	}

	return session.NewPreparer(caps, a.config.Version, session.Options{
		App:                     settings.App,
		Key:                     settings.Key,
		BrowserStackLocal:       settings.BrowserStackLocal,
		GenerateLocalIdentifier: settings.GenerateLocalIdentifier,
		TunnelOpts:              settings.TunnelOpts(),
		Rerun:                   env.IsRerun(),
		RerunSpecs:              env.RerunSpecs(),
	}, deps)
}

// Prepare runs session preparation on caps.
func (a *Application) Prepare(ctx context.Context, caps *capabilities.Container) (*session.Preparer, *session.Result, error) {
	preparer := a.NewPreparer(caps)
	result, err := preparer.OnPrepare(ctx)
	if err != nil {
		logging.Error("Bootstrap", err, "Session preparation failed")
		return preparer, nil, err
	}
	return preparer, result, nil
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}
