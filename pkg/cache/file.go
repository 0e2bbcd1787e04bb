package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache keeps one JSON document per entry under dir, fanned out into
// subdirectories named after the first two hex digits of the key digest:
//
//	<dir>/3f/3fa9...c2.json
//
// Values must be JSON; they are embedded verbatim so a cached path can be
// read with any JSON tool.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens (and creates) a file cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// fileEntry is the on-disk document. Key guards against digest collisions.
type fileEntry struct {
	Key       string          `json:"key"`
	StoredAt  time.Time       `json:"stored_at"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
	Value     json.RawMessage `json:"value"`
}

func (e *fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

// Get reads key. Expired or unreadable entries are removed and miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	file := c.file(key)
	e, err := readFileEntry(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		_ = os.Remove(file)
		return nil, false, nil
	}
	if e.Key != key {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		_ = os.Remove(file)
		return nil, false, nil
	}
	return e.Value, true, nil
}

// Set writes data under key. The file is replaced atomically so concurrent
// readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if !json.Valid(data) {
		return fmt.Errorf("file cache: value for %s is not JSON", key)
	}
	e := fileEntry{Key: key, StoredAt: c.now(), Value: data}
	if ttl > 0 {
		e.ExpiresAt = e.StoredAt.Add(ttl)
	}
	doc, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}

	file := c.file(key)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(file), ".entry-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), file)
}

// Delete removes key.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.file(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op.
func (c *FileCache) Close() error { return nil }

// Clear removes every entry and the emptied fan-out directories. Files that
// are not cache entries are left alone. It returns the number of entries
// removed.
func (c *FileCache) Clear() (int, error) {
	return c.sweep(func(string) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many it
// removed.
func (c *FileCache) Prune() (int, error) {
	now := c.now()
	return c.sweep(func(file string) bool {
		e, err := readFileEntry(file)
		return err != nil || e.expired(now)
	})
}

func (c *FileCache) sweep(remove func(file string) bool) (int, error) {
	shards, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache dir: %w", err)
	}
	count := 0
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		sub := filepath.Join(c.dir, shard.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			return count, fmt.Errorf("read cache dir: %w", err)
		}
		for _, f := range files {
			file := filepath.Join(sub, f.Name())
			if f.IsDir() || filepath.Ext(file) != ".json" || !remove(file) {
				continue
			}
			if err := os.Remove(file); err == nil {
				count++
			}
		}
		// Fails while entries remain.
		_ = os.Remove(sub)
	}
	return count, nil
}

// file maps key to its entry path.
func (c *FileCache) file(key string) string {
	d := digest(key)
	return filepath.Join(c.dir, d[:2], d+".json")
}

func readFileEntry(file string) (*fileEntry, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

var _ Cache = (*FileCache)(nil)
