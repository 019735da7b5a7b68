// Package color provides the terminal styles used by bsprep's command output.
//
// Colors adapt to the terminal background; Initialize forces dark or light
// mode. When output is not a terminal or NO_COLOR is set, lipgloss renders
// plain text.
//
// # Usage Example
//
//	color.Initialize(true)
//	fmt.Fprintln(os.Stderr, color.KeyValue("App", "bs://c700ce60cf13ae8ed97705a55b8e022f13c5827c"))
//	fmt.Fprintln(os.Stderr, color.Success("✓ Tunnel running"))
package color
