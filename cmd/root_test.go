package cmd

import (
	"errors"
	"testing"

	"bsprep/internal/failure"

	"github.com/stretchr/testify/assert"
)

func TestSetVersion(t *testing.T) {
	// Test setting version
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
}

func TestRootCommand(t *testing.T) {
	// Test root command properties
	if rootCmd.Use != "bsprep" {
		t.Errorf("Expected Use to be 'bsprep', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestVersionFlag(t *testing.T) {
	original := rootCmd.Version
	t.Cleanup(func() { SetVersion(original) })
	SetVersion("1.0.0")

	out, err := executeRoot(t, "--version")
	if err != nil {
		t.Fatalf("Error executing version flag: %v", err)
	}

	expected := "bsprep version 1.0.0\n"
	if out != expected {
		t.Errorf("Expected version output %q, got %q", expected, out)
	}
}

func TestSubcommands(t *testing.T) {
	// Test that subcommands are added
	commands := rootCmd.Commands()

	expectedCommands := []string{"version", "prepare", "cache"}
	foundCommands := make(map[string]bool)

	for _, cmd := range commands {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
	assert.Equal(t, exitError, exitCode(failure.Invalid("capabilities", "not a list")))
	assert.Equal(t, exitSevere, exitCode(failure.Severe("app upload failed", errors.New("502"))))
}
