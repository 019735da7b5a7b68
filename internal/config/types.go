package config

import (
	"time"
)

// Config is the top-level configuration structure for bsprep.
type Config struct {
	// Credentials. Empty values fall back to the environment.
	User string `yaml:"user,omitempty"`
	Key  string `yaml:"key,omitempty"`

	// App is the mobile app descriptor: a string reference or an object with
	// one of id/path/custom_id/shareable_id (path and custom_id may be combined).
	App interface{} `yaml:"app,omitempty"`

	// BuildIdentifier overrides per-capability buildIdentifier templates.
	BuildIdentifier string `yaml:"buildIdentifier,omitempty"`

	// BrowserStackLocal enables the local tunnel.
	BrowserStackLocal bool `yaml:"browserstackLocal,omitempty"`
	// ForcedStop kills the tunnel process instead of stopping it gracefully.
	ForcedStop bool `yaml:"forcedStop,omitempty"`
	// GenerateLocalIdentifier assigns a random localIdentifier when opts has none.
	GenerateLocalIdentifier bool `yaml:"generateLocalIdentifier,omitempty"`
	// Opts are passed to the tunnel binary, e.g. localIdentifier, forceLocal.
	Opts map[string]interface{} `yaml:"opts,omitempty"`

	Tunnel  TunnelSettings  `yaml:"tunnel,omitempty"`
	Upload  UploadSettings  `yaml:"upload,omitempty"`
	Logging LoggingSettings `yaml:"logging,omitempty"`

	// CacheFile overrides the build number cache location.
	CacheFile string `yaml:"cacheFile,omitempty"`
}

// TunnelSettings configures the local tunnel binary.
type TunnelSettings struct {
	Binary       string        `yaml:"binary,omitempty"`
	StartTimeout time.Duration `yaml:"startTimeout,omitempty"`
	StopTimeout  time.Duration `yaml:"stopTimeout,omitempty"`
}

// UploadSettings configures the app upload client.
type UploadSettings struct {
	Endpoint string        `yaml:"endpoint,omitempty"`
	Retries  int           `yaml:"retries,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// LoggingSettings configures log output.
type LoggingSettings struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}
