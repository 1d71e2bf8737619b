// Package cache implements a time-bounded on-disk cache for HTTP response
// bodies, keyed by request identity (URL plus query parameters).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Cache stores response bodies as files under a directory. An entry is
// fresh while its file modification time is within the configured TTL;
// stale entries are only detected on read (no background eviction).
//
// A Cache is constructed per run and passed explicitly; it holds no global
// state. The directory is assumed to be exclusively owned by the running
// process, so no locking discipline is applied.
type Cache struct {
	dir string
	ttl time.Duration
}

// New creates a Cache rooted at dir with the given freshness window.
// The directory is created lazily on the first Put.
func New(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl}
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Key returns the cache key for a request. The URL and the canonically
// encoded parameters fully determine the key.
func Key(rawURL string, params url.Values) string {
	sum := sha256.Sum256([]byte(rawURL + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) entryPath(rawURL string, params url.Values) string {
	return filepath.Join(c.dir, Key(rawURL, params)+".json")
}

// Get returns the cached body for the request if an entry exists and is
// younger than the TTL. Unreadable or stale entries are a miss, never an
// error.
func (c *Cache) Get(rawURL string, params url.Values) ([]byte, bool) {
	path := c.entryPath(rawURL, params)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		zap.L().Debug("cache: entry expired", zap.String("path", path))
		return nil, false
	}

	body, err := os.ReadFile(path)
	if err != nil {
		zap.L().Debug("cache: entry unreadable", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	return body, true
}

// Put stores the body under the request's key, creating the cache directory
// if absent. The entry is written to a temp file and renamed into place so a
// crash never leaves a truncated entry behind.
func (c *Cache) Put(rawURL string, params url.Values, body []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return eris.Wrapf(err, "cache: create dir %s", c.dir)
	}

	path := c.entryPath(rawURL, params)
	tmp, err := os.CreateTemp(c.dir, ".cache-*.tmp")
	if err != nil {
		return eris.Wrap(err, "cache: create temp entry")
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return eris.Wrap(err, "cache: write temp entry")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrap(err, "cache: close temp entry")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "cache: install entry %s", path)
	}
	return nil
}

// Purge removes all entries older than the TTL and returns how many were
// removed. A missing cache directory is not an error.
func (c *Cache) Purge() (int, error) {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, eris.Wrapf(err, "cache: read dir %s", c.dir)
	}

	removed := 0
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= c.ttl {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, d.Name())); err != nil {
			return removed, eris.Wrapf(err, "cache: remove %s", d.Name())
		}
		removed++
	}
	return removed, nil
}
