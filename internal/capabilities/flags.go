package capabilities

import (
	"github.com/spf13/cast"
)

// Flag is a vendor flag this package knows how to place.
type Flag string

const (
	FlagLocal           Flag = "local"
	FlagLocalIdentifier Flag = "localIdentifier"
	FlagBuildIdentifier Flag = "buildIdentifier"
	FlagServiceVersion  Flag = "wdioService"
)

// LegacyKey returns the flat key used when vendor options are not in use.
func (f Flag) LegacyKey() string {
	return LegacyPrefix + string(f)
}

const (
	appKey          = "app"
	extensionAppKey = "appium:app"

	buildNameKey       = "buildName"
	legacyBuildNameKey = "build"
)

// vendorOptions returns the entry's "bstack:options" map. When create is set
// a missing map is added; otherwise nil is returned for a missing map.
func vendorOptions(entry Capability, create bool) map[string]interface{} {
	if raw, ok := entry[VendorOptionsKey]; ok && raw != nil {
		if m, ok := raw.(map[string]interface{}); ok {
			return m
		}
		if m, err := cast.ToStringMapE(raw); err == nil {
			entry[VendorOptionsKey] = m
			return m
		}
	}
	if !create {
		return nil
	}
	m := map[string]interface{}{}
	entry[VendorOptionsKey] = m
	return m
}

// SetFlag writes flag=value into entry at the location chosen by
// UsesVendorOptions.
func SetFlag(entry Capability, flag Flag, value interface{}) {
	if UsesVendorOptions(entry) {
		vendorOptions(entry, true)[string(flag)] = value
		return
	}
	entry[flag.LegacyKey()] = value
}

// DeleteFlag removes flag from entry. Only that key is removed: an emptied
// "bstack:options" map stays in place.
func DeleteFlag(entry Capability, flag Flag) {
	if UsesVendorOptions(entry) {
		if opts := vendorOptions(entry, false); opts != nil {
			delete(opts, string(flag))
		}
		return
	}
	delete(entry, flag.LegacyKey())
}

// FlagValue reads flag from entry, looking at the location chosen by
// UsesVendorOptions.
func FlagValue(entry Capability, flag Flag) (interface{}, bool) {
	if UsesVendorOptions(entry) {
		opts := vendorOptions(entry, false)
		if opts == nil {
			return nil, false
		}
		v, ok := opts[string(flag)]
		return v, ok
	}
	v, ok := entry[flag.LegacyKey()]
	return v, ok
}

// SetApp writes the app reference into entry.
func SetApp(entry Capability, appURL string) {
	if UsesVendorOptions(entry) {
		entry[extensionAppKey] = appURL
		return
	}
	entry[appKey] = appURL
}

// BuildName returns the build name of entry, or "" when none is set.
func BuildName(entry Capability) string {
	if opts := vendorOptions(entry, false); opts != nil {
		if name := cast.ToString(opts[buildNameKey]); name != "" {
			return name
		}
	}
	return cast.ToString(entry[legacyBuildNameKey])
}

// SetBuildName overwrites the build name of entry.
func SetBuildName(entry Capability, name string) {
	if UsesVendorOptions(entry) {
		vendorOptions(entry, true)[buildNameKey] = name
		return
	}
	entry[legacyBuildNameKey] = name
}

// BuildIdentifier returns the build identifier template of entry.
func BuildIdentifier(entry Capability) string {
	v, _ := FlagValue(entry, FlagBuildIdentifier)
	return cast.ToString(v)
}

// SetFlag writes flag=value into every entry.
func (c *Container) SetFlag(flag Flag, value interface{}) {
	for _, e := range c.entries {
		SetFlag(e, flag, value)
	}
}

// DeleteFlag removes flag from every entry.
func (c *Container) DeleteFlag(flag Flag) {
	for _, e := range c.entries {
		DeleteFlag(e, flag)
	}
}

// SetApp writes the app reference into every entry.
func (c *Container) SetApp(appURL string) {
	for _, e := range c.entries {
		SetApp(e, appURL)
	}
}

// StampServiceVersion records the preparing tool's version on every entry.
func (c *Container) StampServiceVersion(version string) {
	c.SetFlag(FlagServiceVersion, version)
}
