package app

import (
	"fmt"

	"bsprep/internal/buildcache"
	"bsprep/internal/buildid"
	"bsprep/internal/mobileapp"
	"bsprep/internal/tunnel"
	"bsprep/pkg/logging"
)

// Services holds all the initialized collaborators of a session
type Services struct {
	Cache  *buildcache.Cache
	Builds *buildid.Resolver
	Apps   *mobileapp.Resolver
	// Tunnel is nil unless the local tunnel is enabled.
	Tunnel *tunnel.Manager
}

// InitializeServices creates the services described by cfg. cfg.Settings and
// cfg.Env must be loaded.
func InitializeServices(cfg *Config) (*Services, error) {
	settings, env := cfg.Settings, cfg.Env

	cache, err := newCache(settings.CacheFile)
	if err != nil {
		return nil, err
	}

	buildNameOverride := env.BuildName
	if buildNameOverride != "" {
		logging.Info("Bootstrap", "Build name taken from BROWSERSTACK_BUILD_NAME: %s", buildNameOverride)
	}
	ci := env.CI()
	if ci != nil {
		logging.Debug("Bootstrap", "Detected CI provider %s (build %q)", ci.Name, ci.BuildNumber)
	}
	builds := buildid.NewResolver(cache, nil, buildid.Options{
		Override:          settings.BuildIdentifier,
		BuildNameOverride: buildNameOverride,
		CI:                ci,
	})

	uploader := mobileapp.NewUploader(mobileapp.UploaderConfig{
		Endpoint: settings.Upload.Endpoint,
		Username: settings.User,
		Key:      settings.Key,
		Retries:  settings.Upload.Retries,
		Timeout:  settings.Upload.Timeout,
	})

	services := &Services{
		Cache:  cache,
		Builds: builds,
		Apps:   mobileapp.NewResolver(uploader),
	}

	if settings.BrowserStackLocal {
		manager := tunnel.NewManager(tunnel.NewProcessBinding(settings.Tunnel.Binary), tunnel.Options{
			ForcedStop:   settings.ForcedStop,
			StartTimeout: settings.Tunnel.StartTimeout,
			StopTimeout:  settings.Tunnel.StopTimeout,
		})
		manager.SetStateChangeCallback(func(oldState, newState tunnel.State, err error) {
			if err != nil {
				logging.Error("Tunnel", err, "Tunnel %s -> %s", oldState, newState)
				return
			}
			logging.Debug("Tunnel", "Tunnel %s -> %s", oldState, newState)
		})
		services.Tunnel = manager
	}

	return services, nil
}

func newCache(path string) (*buildcache.Cache, error) {
	if path != "" {
		return buildcache.New(path), nil
	}
	cache, err := buildcache.NewDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to locate build cache: %w", err)
	}
	return cache, nil
}
