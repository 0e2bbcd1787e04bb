// Package cache persists computed tour paths between processes.
//
// Backends:
//   - [FileCache]: one JSON file per entry under the XDG cache directory (CLI default)
//   - [RedisCache]: shared cache for the HTTP API
//
// A nil [Cache] disables caching. Values are [PathEntry] records written with
// [SetPath] and read back with [GetPath]; keys come from a [Keyer] so every
// caller derives the same key for the same graph version and locale.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives path cache keys. Prefix namespaces every key so several
// deployments can share one Redis database.
type Keyer struct {
	Prefix string
}

// PathKey returns "<prefix>path:<digest>" where the digest covers the graph
// version and the collation locale.
func (k Keyer) PathKey(graphVersion, locale string) string {
	return k.Prefix + "path:" + digest(graphVersion, locale)
}

// digest is the hex SHA-256 of the parts joined with NUL, so ("ab", "c")
// and ("a", "bc") never collide.
func digest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
