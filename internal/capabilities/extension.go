package capabilities

import "strings"

const (
	// VendorOptionsKey is the namespace BrowserStack reads its own flags from
	// when extension capabilities are in use.
	VendorOptionsKey = "bstack:options"

	// LegacyPrefix prefixes flat vendor flags on legacy capability sets.
	LegacyPrefix = "browserstack."
)

// extensionNamespaces are the capability namespaces owned by automation
// drivers and vendors. A key such as "goog:chromeOptions" marks its entry as
// using extension capabilities.
var extensionNamespaces = map[string]struct{}{
	"appium": {},
	"bstack": {},
	"goog":   {},
	"moz":    {},
	"ms":     {},
	"safari": {},
	"se":     {},
	"webkit": {},
	"wdio":   {},
}

// IsExtensionKey reports whether key is an extension capability key of the
// form "<namespace>:<name>" with a recognized namespace.
func IsExtensionKey(key string) bool {
	ns, name, ok := strings.Cut(key, ":")
	if !ok || name == "" {
		return false
	}
	_, known := extensionNamespaces[strings.ToLower(ns)]
	return known
}

// UsesVendorOptions reports whether vendor flags for entry belong inside
// "bstack:options" rather than in legacy flat keys.
func UsesVendorOptions(entry Capability) bool {
	if _, ok := entry[VendorOptionsKey]; ok {
		return true
	}
	for key := range entry {
		if IsExtensionKey(key) {
			return true
		}
	}
	return false
}
