package buildcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(filepath.Join(t.TempDir(), cacheDirName, cacheFileName))
}

func readStore(t *testing.T, path string) map[string]map[string]int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]map[string]int
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestNext_StartsAtOneAndIncrements(t *testing.T) {
	c := newTestCache(t)

	first, err := c.Next("demo")
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := c.Next("demo")
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	other, err := c.Next("other")
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	assert.Equal(t, map[string]map[string]int{
		"demo":  {"identifier": 2},
		"other": {"identifier": 1},
	}, readStore(t, c.Path()))
}

func TestNext_SurvivesNewCacheInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	n, err := New(path).Next("demo")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = New(path).Next("demo")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNext_ContinuesFromExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"demo":{"identifier":41}}`), 0o644))

	n, err := New(path).Next("demo")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestNext_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := New(path).Next("demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse build cache")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "corrupt file must not be overwritten")
}

func TestNext_EmptyFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	n, err := New(path).Next("demo")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpdate_EmptyBuildNameSkipsIO(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Update("", 7))

	_, err := os.Stat(c.Path())
	assert.True(t, os.IsNotExist(err), "no file should be created for an empty build name")
}

func TestUpdateThenGet_RoundTrip(t *testing.T) {
	names := []string{
		"demo",
		"with spaces and #hash",
		`quotes "and" \backslashes\`,
		"ünïcödé ✓",
		"{json-ish: [1,2]}",
	}

	c := newTestCache(t)
	for i, name := range names {
		require.NoError(t, c.Update(name, i+10))
	}

	for i, name := range names {
		got, ok, err := New(c.Path()).Get(name)
		require.NoError(t, err)
		assert.True(t, ok, name)
		assert.Equal(t, i+10, got, name)
	}
}

func TestReset(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Next("demo")
	require.NoError(t, err)

	removed, err := c.Reset("demo")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Reset("demo")
	require.NoError(t, err)
	assert.False(t, removed)

	n, err := c.Next("demo")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "cache.json"))
	for i := 0; i < 3; i++ {
		_, err := c.Next("demo")
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cache.json", entries[0].Name())
}

func TestDefaultPath(t *testing.T) {
	original := osUserHomeDir
	defer func() { osUserHomeDir = original }()

	osUserHomeDir = func() (string, error) { return "/home/tester", nil }

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".browserstack", ".build-name-cache.json"), path)
}
