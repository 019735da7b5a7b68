package app

import (
	"bsprep/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath replaces the layered config files with a single file.
	ConfigPath string

	// Debug settings
	Debug bool

	// Version is stamped on every prepared capability set.
	Version string

	// Loaded configuration and environment, filled by NewApplication
	Settings *config.Config
	Env      *config.Environment
}

// NewConfig creates a new application configuration
func NewConfig(configPath string, debug bool, version string) *Config {
	return &Config{
		ConfigPath: configPath,
		Debug:      debug,
		Version:    version,
	}
}
