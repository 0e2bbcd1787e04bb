package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCorruptEntry is returned by [GetPath] for a value that does not decode
// as a [PathEntry]. The value has already been deleted.
var ErrCorruptEntry = errors.New("corrupt path cache entry")

// PathEntry is a cached tour path and the inputs it was built from.
type PathEntry struct {
	Version string    `json:"version"`
	Locale  string    `json:"locale,omitempty"`
	Path    []string  `json:"path"`
	BuiltAt time.Time `json:"built_at"`
}

// GetPath reads the entry under key. An entry built for another version or
// locale is a miss.
func GetPath(ctx context.Context, c Cache, key, version, locale string) (PathEntry, bool, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit {
		return PathEntry{}, false, err
	}
	var e PathEntry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = c.Delete(ctx, key)
		return PathEntry{}, false, fmt.Errorf("%w %s", ErrCorruptEntry, key)
	}
	if e.Version != version || e.Locale != locale {
		return PathEntry{}, false, nil
	}
	return e, true, nil
}

// SetPath stores e under key and returns the encoded size.
func SetPath(ctx context.Context, c Cache, key string, e PathEntry, ttl time.Duration) (int, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return 0, err
	}
	return len(data), nil
}
