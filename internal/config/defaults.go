package config

import "time"

const (
	DefaultTunnelBinary   = "BrowserStackLocal"
	DefaultUploadEndpoint = "https://api-cloud.browserstack.com/app-automate/upload"

	// DefaultTunnelTimeout bounds tunnel start and stop.
	DefaultTunnelTimeout = 60 * time.Second
	DefaultUploadTimeout = 5 * time.Minute
)

// GetDefaultConfig returns the built-in configuration: no app, no tunnel,
// single-shot uploads.
func GetDefaultConfig() Config {
	return Config{
		Opts: map[string]interface{}{},
		Tunnel: TunnelSettings{
			Binary:       DefaultTunnelBinary,
			StartTimeout: DefaultTunnelTimeout,
			StopTimeout:  DefaultTunnelTimeout,
		},
		Upload: UploadSettings{
			Endpoint: DefaultUploadEndpoint,
			Retries:  0,
			Timeout:  DefaultUploadTimeout,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}
