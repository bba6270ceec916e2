// Package cache implements a file-backed JSON cache for search results,
// invalidated by entry age.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudtask/cloudtask/internal/types"
)

// DefaultTTL is how long cached search results stay valid.
const DefaultTTL = 15 * time.Minute

// Cache stores JSON documents as files under a directory, one file per key.
// Validity is judged by file modification time against the TTL.
type Cache struct {
	dir string
	ttl time.Duration
}

// New creates a cache rooted at dir. The directory is created on first
// write, not here, so constructing a cache never touches the disk.
func New(dir string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{dir: dir, ttl: ttl}
}

// Key derives a stable cache key from any JSON-serializable value.
func Key(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", types.WrapError(types.CACHE_WRITE_FAILED, "failed to derive cache key", err)
	}
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Get reads the cached document for key into out. It reports a miss, not an
// error, when the entry is absent or expired; a stale entry is removed.
func (c *Cache) Get(key string, out any) (bool, error) {
	path := c.entryPath(key)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, types.WrapError(types.CACHE_READ_FAILED, "failed to stat cache entry", err)
	}

	if time.Since(info.ModTime()) >= c.ttl {
		os.Remove(path)
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, types.WrapError(types.CACHE_READ_FAILED, "failed to read cache entry", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		os.Remove(path)
		return false, nil
	}
	return true, nil
}

// Set writes a document to the cache, creating the cache directory if
// needed.
func (c *Cache) Set(key string, v any) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return types.WrapError(types.CACHE_WRITE_FAILED, "failed to create cache directory", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return types.WrapError(types.CACHE_WRITE_FAILED, "failed to encode cache entry", err)
	}
	if err := os.WriteFile(c.entryPath(key), data, 0o644); err != nil {
		return types.WrapError(types.CACHE_WRITE_FAILED, "failed to write cache entry", err)
	}
	return nil
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return types.WrapError(types.CACHE_READ_FAILED, "failed to list cache directory", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return types.WrapError(types.CACHE_WRITE_FAILED, "failed to remove cache entry", err)
		}
	}
	return nil
}

// entryPath returns the file path for a cache key.
func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
