package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"bsprep/internal/failure"
	"bsprep/internal/session"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearVendorEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"BROWSERSTACK_USERNAME", "BROWSERSTACK_ACCESS_KEY", "BROWSERSTACK_BUILD_NAME",
		"BROWSERSTACK_RERUN", "BROWSERSTACK_RERUN_TESTS",
	} {
		t.Setenv(name, "")
	}
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestReadCapabilities(t *testing.T) {
	dir := t.TempDir()

	jsonPath := writeTestFile(t, dir, "caps.json", `[{"browserName":"chrome","bstack:options":{"os":"Windows"}}]`)
	c, err := readCapabilities(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	yamlPath := writeTestFile(t, dir, "caps.yaml", `
phone:
  capabilities:
    platformName: android
    appium:deviceName: Pixel 7
desktop:
  capabilities:
    browserName: firefox
`)
	c, err = readCapabilities(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"desktop", "phone"}, c.Names())

	badPath := writeTestFile(t, dir, "bad.json", `{"browserName":`)
	_, err = readCapabilities(badPath)
	require.Error(t, err)
	assert.True(t, failure.IsValidation(err))

	notCaps := writeTestFile(t, dir, "scalar.yaml", "just a string\n")
	_, err = readCapabilities(notCaps)
	assert.True(t, failure.IsValidation(err))

	_, err = readCapabilities(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestWritePrepared(t *testing.T) {
	dir := t.TempDir()
	c, err := readCapabilities(writeTestFile(t, dir, "caps.json", `[{"browserName":"chrome"}]`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writePrepared(&buf, "", c, &session.Result{Specs: []string{"a.js"}}))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	want := map[string]interface{}{
		"capabilities": []interface{}{map[string]interface{}{"browserName": "chrome"}},
		"specs":        []interface{}{"a.js"},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	out := filepath.Join(dir, "prepared.json")
	require.NoError(t, writePrepared(&buf, out, c, &session.Result{}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "specs")
}

func TestPrepareCommand(t *testing.T) {
	clearVendorEnv(t)
	dir := t.TempDir()
	cfgPath := writeTestFile(t, dir, "config.yaml", "cacheFile: "+filepath.Join(dir, "cache.json")+"\n")
	capsPath := writeTestFile(t, dir, "caps.json", `[{"browserName":"chrome","goog:chromeOptions":{}}]`)

	SetVersion("9.9.9")
	out, err := executeRoot(t, "prepare", "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"), "--caps", capsPath, "--wait=false", "--output", "")
	require.NoError(t, err)

	var doc preparedDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	caps := doc.Capabilities.([]interface{})[0].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"wdioService": "9.9.9"}, caps["bstack:options"])
}

func TestPrepareCommand_SevereOnMissingApp(t *testing.T) {
	clearVendorEnv(t)
	dir := t.TempDir()
	cfgPath := writeTestFile(t, dir, "config.yaml", "cacheFile: "+filepath.Join(dir, "cache.json")+"\napp: "+filepath.Join(dir, "missing.apk")+"\n")
	capsPath := writeTestFile(t, dir, "caps.json", `[{"platformName":"android"}]`)

	_, err := executeRoot(t, "prepare", "--config", cfgPath, "--env-file", "", "--caps", capsPath, "--wait=false", "--output", "")
	require.Error(t, err)
	assert.True(t, failure.IsSevere(err))
	assert.Equal(t, exitSevere, exitCode(err))
}

func TestPrepareCommand_SevereOnInvalidCapabilities(t *testing.T) {
	clearVendorEnv(t)
	dir := t.TempDir()
	capsPath := writeTestFile(t, dir, "caps.json", `{"browserName":"chrome"}`)

	_, err := executeRoot(t, "prepare", "--env-file", "", "--caps", capsPath, "--wait=false", "--output", "")
	require.Error(t, err)
	assert.True(t, failure.IsSevere(err))
	assert.True(t, failure.IsValidation(err))
	assert.Equal(t, exitSevere, exitCode(err))
}

func TestPrepareCommand_EnvFile(t *testing.T) {
	clearVendorEnv(t)
	dir := t.TempDir()
	cfgPath := writeTestFile(t, dir, "config.yaml", "cacheFile: "+filepath.Join(dir, "cache.json")+"\n")
	capsPath := writeTestFile(t, dir, "caps.json", `[{"browserName":"chrome"}]`)
	envPath := writeTestFile(t, dir, "test.env", "BROWSERSTACK_RERUN=true\nBROWSERSTACK_RERUN_TESTS=specs/login.js\n")
	// godotenv does not override variables that are already set
	require.NoError(t, os.Unsetenv("BROWSERSTACK_RERUN"))
	require.NoError(t, os.Unsetenv("BROWSERSTACK_RERUN_TESTS"))

	out, err := executeRoot(t, "prepare", "--config", cfgPath, "--env-file", envPath, "--caps", capsPath, "--wait=false", "--output", "")
	require.NoError(t, err)

	var doc preparedDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"specs/login.js"}, doc.Specs)
}
