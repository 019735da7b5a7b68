// Package buildcache stores the last used build number per build name in a
// small JSON file under the user's home directory.
//
// The file is shared by every invocation on the machine. Writes are atomic
// (temp file + rename) so a reader never sees a torn file, but there is no
// lock around the read-increment-write cycle: two processes racing on the same
// build name can both read N and both write N+1.
package buildcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"bsprep/pkg/logging"
)

const (
	cacheDirName  = ".browserstack"
	cacheFileName = ".build-name-cache.json"
	subsystem     = "BuildCache"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

// Entry is the stored state for one build name.
type Entry struct {
	Identifier int `json:"identifier"`
}

// Store is the full content of the cache file.
type Store map[string]Entry

// DefaultPath returns <home>/.browserstack/.build-name-cache.json.
func DefaultPath() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, cacheDirName, cacheFileName), nil
}

// Cache reads and writes the counter file at a fixed path.
type Cache struct {
	mu   sync.Mutex
	path string
}

// New creates a Cache backed by path.
func New(path string) *Cache {
	return &Cache{path: path}
}

// NewDefault creates a Cache at DefaultPath.
func NewDefault() (*Cache, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return New(path), nil
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}

// Next returns the next build number for buildName and persists it. An
// unseen name starts at 1. A corrupt file is reported as an error and left
// untouched.
func (c *Cache) Next(buildName string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	store, err := c.load()
	if err != nil {
		return 0, err
	}

	next := 1
	if entry, ok := store[buildName]; ok {
		next = entry.Identifier + 1
	}

	if buildName == "" {
		return next, nil
	}

	store[buildName] = Entry{Identifier: next}
	if err := c.save(store); err != nil {
		return 0, err
	}
	logging.Debug(subsystem, "Build %q now at identifier %d", buildName, next)
	return next, nil
}

// Update stores number for buildName. An empty build name is skipped without
// touching the file.
func (c *Cache) Update(buildName string, number int) error {
	if buildName == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	store, err := c.load()
	if err != nil {
		return err
	}
	store[buildName] = Entry{Identifier: number}
	return c.save(store)
}

// Get returns the stored identifier for buildName.
func (c *Cache) Get(buildName string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	store, err := c.load()
	if err != nil {
		return 0, false, err
	}
	entry, ok := store[buildName]
	return entry.Identifier, ok, nil
}

// Reset removes buildName from the store. It reports whether an entry existed.
func (c *Cache) Reset(buildName string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	store, err := c.load()
	if err != nil {
		return false, err
	}
	if _, ok := store[buildName]; !ok {
		return false, nil
	}
	delete(store, buildName)
	return true, c.save(store)
}

// load reads the store. A missing file is an empty store.
func (c *Cache) load() (Store, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read build cache %s: %w", c.path, err)
	}

	store := Store{}
	if len(data) == 0 {
		return store, nil
	}
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse build cache %s: %w", c.path, err)
	}
	return store, nil
}

// save overwrites the whole file through a temp file and rename.
func (c *Cache) save(store Store) error {
	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("marshal build cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create build cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp build cache: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp build cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp build cache: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp build cache: %w", err)
	}
	return nil
}
