package config

import (
	"fmt"
	"os"
	"path/filepath"

	"bsprep/pkg/logging"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/bsprep"
	projectConfigDir = ".bsprep"
	configFileName   = "config.yaml"
)

// LoadConfig loads the configuration by layering default, user, and project
// settings.
func LoadConfig() (Config, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
		userConfig, err := loadConfigFromFile(userConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
		config = mergeConfigs(config, userConfig)
	}

	// 3. Project-specific configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
		projectConfig, err := loadConfigFromFile(projectConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
		config = mergeConfigs(config, projectConfig)
	}

	return config, nil
}

// LoadConfigFromPath loads defaults overlaid with a single explicit file.
func LoadConfigFromPath(path string) (Config, error) {
	fileConfig, err := loadConfigFromFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return mergeConfigs(GetDefaultConfig(), fileConfig), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Non-zero overlay
// values win; booleans can only be switched on by an overlay.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.User != "" {
		merged.User = overlay.User
	}
	if overlay.Key != "" {
		merged.Key = overlay.Key
	}
	if overlay.App != nil {
		merged.App = overlay.App
	}
	if overlay.BuildIdentifier != "" {
		merged.BuildIdentifier = overlay.BuildIdentifier
	}
	merged.BrowserStackLocal = base.BrowserStackLocal || overlay.BrowserStackLocal
	merged.ForcedStop = base.ForcedStop || overlay.ForcedStop
	merged.GenerateLocalIdentifier = base.GenerateLocalIdentifier || overlay.GenerateLocalIdentifier

	// Opts are merged key by key
	opts := make(map[string]interface{}, len(base.Opts)+len(overlay.Opts))
	for k, v := range base.Opts {
		opts[k] = v
	}
	for k, v := range overlay.Opts {
		opts[k] = v
	}
	merged.Opts = opts

	if overlay.Tunnel.Binary != "" {
		merged.Tunnel.Binary = overlay.Tunnel.Binary
	}
	if overlay.Tunnel.StartTimeout > 0 {
		merged.Tunnel.StartTimeout = overlay.Tunnel.StartTimeout
	}
	if overlay.Tunnel.StopTimeout > 0 {
		merged.Tunnel.StopTimeout = overlay.Tunnel.StopTimeout
	}

	if overlay.Upload.Endpoint != "" {
		merged.Upload.Endpoint = overlay.Upload.Endpoint
	}
	if overlay.Upload.Retries > 0 {
		merged.Upload.Retries = overlay.Upload.Retries
	}
	if overlay.Upload.Timeout > 0 {
		merged.Upload.Timeout = overlay.Upload.Timeout
	}

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.Format != "" {
		merged.Logging.Format = overlay.Logging.Format
	}

	if overlay.CacheFile != "" {
		merged.CacheFile = overlay.CacheFile
	}

	return merged
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
