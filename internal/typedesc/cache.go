package typedesc

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DiskCache keeps described documents on disk, keyed by engine and type
// expression. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app, or ~/.cache/app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens the cache rooted at dir, creating it if needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Key derives the cache key of an expression described by an engine.
func Key(engine, expr string) string {
	sum := sha256.Sum256([]byte(engine + "\x00" + expr))
	return hex.EncodeToString(sum[:])
}

func (c *DiskCache) pathFor(key string) string {
	return filepath.Join(c.dir, "types", key+".mp")
}

// Put writes doc under its key, replacing any previous entry atomically.
func (c *DiskCache) Put(doc Document) (err error) {
	if c == nil {
		return nil
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(Key(doc.Engine, doc.Expr))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("remove temp file: %w", rmErr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		f.Close() //nolint:errcheck // write error wins
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the entry for engine and expr. A stale or corrupt entry is
// reported as a miss.
func (c *DiskCache) Get(engine, expr string) (Document, bool, error) {
	if c == nil {
		return Document{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(Key(engine, expr)))
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, err
	}
	doc, err := Unmarshal(data)
	if err != nil || doc.Engine != engine || doc.Expr != expr {
		return Document{}, false, nil
	}
	return doc, true, nil
}
