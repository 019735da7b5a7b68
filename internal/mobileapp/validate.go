// Package mobileapp validates app descriptors and uploads local app packages
// to the vendor's app storage.
package mobileapp

import (
	"fmt"
	"sort"
	"strings"

	"bsprep/internal/failure"

	"github.com/spf13/cast"
)

// Descriptor keys.
const (
	KeyID          = "id"
	KeyPath        = "path"
	KeyCustomID    = "custom_id"
	KeyShareableID = "shareable_id"
)

const supportedProperties = "{id<string>, path<string>, custom_id<string>, shareable_id<string>}"

var validKeys = map[string]bool{
	KeyID:          true,
	KeyPath:        true,
	KeyCustomID:    true,
	KeyShareableID: true,
}

// Resolved is a validated app descriptor.
type Resolved struct {
	// App is a local path or a vendor reference (bs:// url, id, custom id or
	// shareable id).
	App string
	// CustomID is sent along with an upload. Only set together with a path.
	CustomID string
}

// Validate checks an app descriptor taken from configuration. A string is
// accepted as is. A mapping may name exactly one of the supported keys, or
// path together with custom_id.
func Validate(descriptor interface{}) (Resolved, error) {
	switch d := descriptor.(type) {
	case string:
		return Resolved{App: d}, nil
	case nil:
		return Resolved{}, invalidFormat()
	}

	props, err := cast.ToStringMapE(descriptor)
	if err != nil || len(props) == 0 {
		return Resolved{}, invalidFormat()
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > 2 {
		return Resolved{}, coexistError(keys)
	}
	for _, k := range keys {
		if !validKeys[k] {
			return Resolved{}, failure.Invalid("app", "[Invalid app property] supported properties are %s", supportedProperties)
		}
	}

	value := func(k string) string { return cast.ToString(props[k]) }

	if len(keys) == 2 && (keys[0] != KeyCustomID || keys[1] != KeyPath) {
		return Resolved{}, coexistError(keys)
	}
	for _, k := range keys {
		if value(k) == "" {
			return Resolved{}, failure.Invalid("app", "[Invalid app property] %s must be a non-empty string", k)
		}
	}

	if len(keys) == 1 {
		return Resolved{App: value(keys[0])}, nil
	}
	return Resolved{App: value(KeyPath), CustomID: value(KeyCustomID)}, nil
}

func invalidFormat() error {
	return failure.Invalid("app", "[Invalid format] app should be string or an object with any one of the properties %s", supportedProperties)
}

func coexistError(keys []string) error {
	return failure.Invalid("app", "keys %s can't co-exist as app values, use any one property from %s, only %q and %q can co-exist",
		strings.Join(keys, ","), supportedProperties, KeyPath, KeyCustomID)
}

// String renders r for log lines.
func (r Resolved) String() string {
	if r.CustomID == "" {
		return r.App
	}
	return fmt.Sprintf("%s (custom_id %s)", r.App, r.CustomID)
}
