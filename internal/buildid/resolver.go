// Package buildid expands the placeholders of buildIdentifier templates.
//
// Two tokens are recognized:
//
//	${BUILD_NUMBER}  "CI <n>" on a recognized CI provider, otherwise the next
//	                 local counter for the capability's build name
//	${DATE_TIME}     the current local time, e.g. "18-Oct-14:03:59"
//
// A template whose counter cannot be read is left unresolved; the run goes
// on with the literal template.
package buildid

import (
	"strconv"
	"strings"

	"bsprep/internal/capabilities"
	"bsprep/internal/config"
	"bsprep/pkg/logging"

	"github.com/jonboulle/clockwork"
)

const (
	TokenBuildNumber = "${BUILD_NUMBER}"
	TokenDateTime    = "${DATE_TIME}"

	// DateTimeLayout renders ${DATE_TIME} with second granularity.
	DateTimeLayout = "02-Jan-15:04:05"

	subsystem = "BuildID"
)

// Counter hands out build numbers per build name.
type Counter interface {
	Next(buildName string) (int, error)
}

// Options configures a Resolver.
type Options struct {
	// Override replaces every capability's own buildIdentifier template.
	Override string
	// BuildNameOverride replaces every capability's build name and
	// suppresses identifier resolution.
	BuildNameOverride string
	// CI is the detected CI provider, nil outside CI.
	CI *config.CIInfo
}

// Resolver resolves buildIdentifier templates in capability containers.
type Resolver struct {
	counter Counter
	clock   clockwork.Clock
	opts    Options
}

// NewResolver creates a Resolver. A nil clock uses the real clock.
func NewResolver(counter Counter, clock clockwork.Clock, opts Options) *Resolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Resolver{counter: counter, clock: clock, opts: opts}
}

// Resolve rewrites the build identifier of every entry in c. Entries are
// processed in order. Entries sharing a template and build name get the same
// resolved value, so one run consumes one counter value per build name.
func (r *Resolver) Resolve(c *capabilities.Container) {
	resolved := make(map[string]string)

	for i, entry := range c.Entries() {
		if r.opts.BuildNameOverride != "" {
			capabilities.SetBuildName(entry, r.opts.BuildNameOverride)
			if capabilities.BuildIdentifier(entry) != "" {
				logging.Info(subsystem, "Build name set from the environment, dropping buildIdentifier of capability %d", i)
				capabilities.DeleteFlag(entry, capabilities.FlagBuildIdentifier)
			}
			continue
		}

		template := r.opts.Override
		if template == "" {
			template = capabilities.BuildIdentifier(entry)
		}
		if template == "" {
			continue
		}

		buildName := capabilities.BuildName(entry)
		if buildName == "" {
			logging.Info(subsystem, "Skipping buildIdentifier of capability %d as buildName is not set", i)
			capabilities.DeleteFlag(entry, capabilities.FlagBuildIdentifier)
			continue
		}

		key := buildName + "\x00" + template
		value, ok := resolved[key]
		if !ok {
			// an unresolvable template is still written, so an override
			// replaces the entry's own template either way
			value, _ = r.Expand(template, buildName)
			resolved[key] = value
		}
		capabilities.SetFlag(entry, capabilities.FlagBuildIdentifier, value)
	}
}

// Expand substitutes the tokens of template for buildName. It returns false
// when ${BUILD_NUMBER} could not be resolved.
func (r *Resolver) Expand(template, buildName string) (string, bool) {
	out := template

	if strings.Contains(out, TokenBuildNumber) {
		number, ok := r.buildNumber(buildName)
		if !ok {
			return template, false
		}
		out = strings.ReplaceAll(out, TokenBuildNumber, number)
	}

	if strings.Contains(out, TokenDateTime) {
		out = strings.ReplaceAll(out, TokenDateTime, r.clock.Now().Local().Format(DateTimeLayout))
	}

	return out, true
}

func (r *Resolver) buildNumber(buildName string) (string, bool) {
	if ci := r.opts.CI; ci != nil && ci.BuildNumber != "" {
		return "CI " + ci.BuildNumber, true
	}

	if r.counter == nil {
		return "", false
	}
	n, err := r.counter.Next(buildName)
	if err != nil {
		logging.Debug(subsystem, "Could not read local build number for %q, leaving template unresolved: %v", buildName, err)
		return "", false
	}
	return strconv.Itoa(n), true
}
