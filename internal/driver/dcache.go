package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/ulikunitz/xz"
	"github.com/vmihailenco/msgpack/v5"

	"grammarref/internal/document"
	"grammarref/internal/project"
	"grammarref/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 2

var cacheLog = commonlog.GetLogger("grammarref.cache")

// DiskCache хранит извлечённые из глав записи по хешу содержимого.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached extraction result of one chapter.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	ContentHash source.Digest
	Record      document.Record
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
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

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey derives the key of a chapter from its content hash and the schema.
func CacheKey(content source.Digest) project.Digest {
	return project.Combine(project.Digest(content), []byte{byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)})
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Записи документов лежат в подкаталоге "docs", так их проще чистить.
	return filepath.Join(c.dir, "docs", hexKey[:2], hexKey+".mp.xz")
}

// Put serializes, compresses and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			cacheLog.Warningf("failed to remove temp file %s: %v", f.Name(), rmErr)
		}
	}()

	zw, err := xz.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("xz writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush xz: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. A payload with a
// different schema or content hash counts as a miss.
func (c *DiskCache) Get(key project.Digest, content source.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			cacheLog.Warningf("failed to close %s: %v", p, closeErr)
		}
	}()
	zr, err := xz.NewReader(f)
	if err != nil {
		return false, fmt.Errorf("%s: xz reader: %w", p, err)
	}
	if err := msgpack.NewDecoder(zr).Decode(out); err != nil {
		return false, fmt.Errorf("%s: decode payload: %w", p, err)
	}
	if out.Schema != diskCacheSchemaVersion || out.ContentHash != content {
		cacheLog.Debugf("stale cache entry %s", p)
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
