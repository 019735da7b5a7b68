// Package capabilities normalizes capability declarations into the shape
// BrowserStack expects.
//
// Capabilities arrive in one of two shapes:
//
//	// list
//	[{"browserName": "chrome"}, {"browserName": "firefox"}]
//
//	// multiremote: logical name -> {capabilities: {...}}
//	{"alpha": {"capabilities": {"browserName": "chrome"}}}
//
// FromValue inspects the decoded value once and returns a Container that
// exposes the capability entries as a flat ordered sequence, so the mutators
// in this package never branch on the shape. Container.Value returns the
// mutated data in its original shape.
//
// # Flag location
//
// Vendor flags are written in one of two places per entry:
//
//   - inside "bstack:options" using the short key ("local", "buildIdentifier"),
//     when the entry already has "bstack:options" or any extension capability
//     key such as "goog:chromeOptions" or "appium:deviceName";
//   - otherwise as a flat legacy key ("browserstack.local").
//
// The app reference follows the same rule, using "appium:app" or "app".
package capabilities
