package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"go-simpler.org/env"
)

// Environment holds every environment variable bsprep reads. It is loaded once
// at startup and passed down explicitly.
type Environment struct {
	Username  string `env:"BROWSERSTACK_USERNAME"`
	AccessKey string `env:"BROWSERSTACK_ACCESS_KEY"`

	// BuildName replaces every capability's build name and disables
	// buildIdentifier resolution.
	BuildName string `env:"BROWSERSTACK_BUILD_NAME"`

	Rerun      string `env:"BROWSERSTACK_RERUN"`
	RerunTests string `env:"BROWSERSTACK_RERUN_TESTS"`

	CIVars CIVariables
}

// LoadEnvironment reads the process environment.
func LoadEnvironment() (Environment, error) {
	return LoadEnvironmentFrom(nil)
}

// LoadEnvironmentFrom reads the environment from source. A nil source reads
// the process environment.
func LoadEnvironmentFrom(source env.Source) (Environment, error) {
	var e Environment
	var opts *env.Options
	if source != nil {
		opts = &env.Options{Source: source}
	}
	if err := env.Load(&e, opts); err != nil {
		return Environment{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := env.Load(&e.CIVars, opts); err != nil {
		return Environment{}, fmt.Errorf("failed to load CI environment variables: %w", err)
	}
	return e, nil
}

// IsRerun reports whether the run was triggered as a rerun of failed tests.
func (e Environment) IsRerun() bool {
	return isTrue(e.Rerun)
}

// RerunSpecs returns the spec files to rerun, or nil when this is not a rerun
// or no list was given.
func (e Environment) RerunSpecs() []string {
	if !e.IsRerun() {
		return nil
	}
	var specs []string
	for _, s := range strings.Split(e.RerunTests, ",") {
		if s = strings.TrimSpace(s); s != "" {
			specs = append(specs, s)
		}
	}
	return specs
}

// CI returns the detected CI provider, or nil outside CI.
func (e Environment) CI() *CIInfo {
	return e.CIVars.Detect()
}

// TunnelOpts returns the tunnel options as strings.
func (c Config) TunnelOpts() map[string]string {
	return cast.ToStringMapString(c.Opts)
}

// isTrue treats "1", "true", "yes" (any case) as true.
func isTrue(v string) bool {
	v = strings.TrimSpace(v)
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return strings.EqualFold(v, "yes")
}
