// Package cache persists the full roster state tree as a single JSON blob on
// local disk so the app starts warm and keeps working without a remote store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dyluth/roster/pkg/docstore"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileName is the versioned identifier of the cache blob. Bump the version
// whenever docstore.State changes shape so an incompatible blob from an
// older build is ignored instead of loaded.
const FileName = "roster-state-v1.json"

// Cache reads and writes the state blob under one directory.
// Save is safe for concurrent use; readers never observe a partial write.
type Cache struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// New returns a cache storing its blob in dir. The directory is created on
// first Save.
func New(dir string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		path:   filepath.Join(dir, FileName),
		logger: logger,
	}
}

// Path returns the absolute location of the blob.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the persisted state. A missing blob yields an empty default
// state. An unreadable or corrupt blob also yields the default, together
// with the error so the caller can report it.
func (c *Cache) Load() (*docstore.State, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return docstore.NewState(), nil
		}
		return docstore.NewState(), fmt.Errorf("failed to read cache %s: %w", c.path, err)
	}

	state := docstore.NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return docstore.NewState(), fmt.Errorf("failed to decode cache %s: %w", c.path, err)
	}
	state.Normalize()

	return state, nil
}

// Save writes the state atomically: temp file, fsync, rename. Concurrent
// saves from several Cache values on one directory each land whole; the
// last rename wins.
func (c *Cache) Save(state *docstore.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Unique per save: other processes may share this directory.
	file, err := os.CreateTemp(filepath.Dir(c.path), FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary cache file: %w", err)
	}
	temporaryPath := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary cache file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary cache file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary cache file: %w", err)
	}

	if err := os.Rename(temporaryPath, c.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming cache file into place: %w", err)
	}

	return nil
}

// Watch calls onChange whenever the blob is replaced on disk, including by
// another process on this machine. It blocks until ctx is cancelled.
// The parent directory is watched because Save replaces the file by rename.
func (c *Cache) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch cache directory %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(c.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("cache watcher error", zap.Error(err))
		}
	}
}
