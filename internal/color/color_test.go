package color

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		isDarkMode bool
		expected   bool
	}{
		{"set dark mode", true, true},
		{"set light mode", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Initialize(tt.isDarkMode)
			if lipgloss.HasDarkBackground() != tt.expected {
				t.Errorf("lipgloss.HasDarkBackground() got %v, want %v after Initialize(%v)", lipgloss.HasDarkBackground(), tt.expected, tt.isDarkMode)
			}
		})
	}
}

func TestKeyValue(t *testing.T) {
	out := KeyValue("App", "bs://abc")
	assert.Contains(t, out, "App:")
	assert.Contains(t, out, "bs://abc")

	empty := KeyValue("Local identifier", "")
	assert.Contains(t, empty, "-")
}

func TestRenderHelpersKeepText(t *testing.T) {
	for _, fn := range []func(string) string{Success, Warning, Error, Muted} {
		assert.Contains(t, fn("tunnel running"), "tunnel running")
	}
}
