// Package session prepares capability sets before a test run and tears down
// what preparation started once the run completes.
package session

import (
	"context"
	"fmt"

	"bsprep/internal/capabilities"
	"bsprep/internal/failure"
	"bsprep/pkg/logging"

	"github.com/google/uuid"
)

const subsystem = "Session"

// AppResolver turns an app descriptor into the app reference for the
// capabilities.
type AppResolver interface {
	Resolve(ctx context.Context, descriptor interface{}) (string, error)
}

// BuildResolver rewrites build identifiers in place.
type BuildResolver interface {
	Resolve(c *capabilities.Container)
}

// Tunnel is the local tunnel lifecycle.
type Tunnel interface {
	Start(ctx context.Context, opts map[string]string) error
	Stop(ctx context.Context) (int, error)
}

// Options are the per-run settings of a Preparer.
type Options struct {
	// App is the app descriptor, nil when no app is configured.
	App interface{}
	// Key is the access key handed to the tunnel.
	Key string

	BrowserStackLocal       bool
	GenerateLocalIdentifier bool
	// TunnelOpts are extra tunnel options; localIdentifier is also written
	// to the capabilities.
	TunnelOpts map[string]string

	Rerun      bool
	RerunSpecs []string
}

// Deps are the collaborators of a Preparer. Apps and Tunnel may be nil when
// the corresponding feature is not configured.
type Deps struct {
	Apps   AppResolver
	Builds BuildResolver
	Tunnel Tunnel
	// NewID generates local identifiers. Defaults to a random UUID.
	NewID func() string
}

// Result is what preparation hands back to the test runner.
type Result struct {
	// Specs replaces the runner's spec list when non-nil.
	Specs           []string
	LocalIdentifier string
	App             string
}

// Preparer owns a capability container for the duration of a session.
type Preparer struct {
	caps           *capabilities.Container
	opts           Options
	deps           Deps
	tunnelLaunched bool
}

// NewPreparer creates a Preparer for caps and stamps version on every entry.
func NewPreparer(caps *capabilities.Container, version string, opts Options, deps Deps) *Preparer {
	if deps.NewID == nil {
		deps.NewID = func() string { return uuid.New().String() }
	}
	caps.StampServiceVersion(version)
	return &Preparer{caps: caps, opts: opts, deps: deps}
}

// Capabilities returns the container being prepared.
func (p *Preparer) Capabilities() *capabilities.Container {
	return p.caps
}

// OnPrepare mutates the capabilities for the run: app reference, build
// identifiers and tunnel flags, then starts the tunnel. Every returned error
// is severe.
func (p *Preparer) OnPrepare(ctx context.Context) (*Result, error) {
	result := &Result{}

	if p.opts.App != nil {
		if p.deps.Apps == nil {
			return nil, failure.Severe("app configured but no app resolver available", nil)
		}
		app, err := p.deps.Apps.Resolve(ctx, p.opts.App)
		if err != nil {
			return nil, failure.Severe("app preparation failed", err)
		}
		p.caps.SetApp(app)
		result.App = app
	}

	if p.deps.Builds != nil {
		p.deps.Builds.Resolve(p.caps)
	}

	if p.opts.BrowserStackLocal {
		id, err := p.startTunnel(ctx)
		if err != nil {
			return nil, err
		}
		result.LocalIdentifier = id
	}

	if p.opts.Rerun {
		result.Specs = p.opts.RerunSpecs
		logging.Info(subsystem, "Rerun requested, restricting run to %d spec(s)", len(result.Specs))
	}

	return result, nil
}

func (p *Preparer) startTunnel(ctx context.Context) (string, error) {
	if p.deps.Tunnel == nil {
		return "", failure.Severe("local tunnel enabled but no tunnel available", nil)
	}

	opts := make(map[string]string, len(p.opts.TunnelOpts)+1)
	for k, v := range p.opts.TunnelOpts {
		opts[k] = v
	}
	if opts[string(capabilities.FlagLocalIdentifier)] == "" && p.opts.GenerateLocalIdentifier {
		opts[string(capabilities.FlagLocalIdentifier)] = p.deps.NewID()
	}
	localID := opts[string(capabilities.FlagLocalIdentifier)]

	p.caps.SetFlag(capabilities.FlagLocal, true)
	if localID != "" {
		p.caps.SetFlag(capabilities.FlagLocalIdentifier, localID)
	}

	opts["key"] = p.opts.Key

	logging.Info(subsystem, "Starting local tunnel")
	// a failed start may leave the process behind, OnComplete still stops it
	p.tunnelLaunched = true
	if err := p.deps.Tunnel.Start(ctx, opts); err != nil {
		return "", failure.Severe("local tunnel failed to start", err)
	}
	logging.Info(subsystem, "Local tunnel started")
	return localID, nil
}

// OnComplete stops the tunnel launched by OnPrepare. It returns the pid of a
// force-killed tunnel process, or 0.
func (p *Preparer) OnComplete(ctx context.Context) (int, error) {
	if !p.tunnelLaunched {
		return 0, nil
	}

	logging.Info(subsystem, "Stopping local tunnel")
	pid, err := p.deps.Tunnel.Stop(ctx)
	if err != nil {
		return pid, fmt.Errorf("local tunnel failed to stop: %w", err)
	}
	p.tunnelLaunched = false
	return pid, nil
}
