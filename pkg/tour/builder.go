package tour

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/conceptgraph/pkg/cache"
	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/observability"
)

// Builder computes tour paths with locale-aware label ordering and
// memoization keyed by a caller-supplied version string.
//
// A Builder is safe for concurrent use.
type Builder struct {
	mu       sync.Mutex
	locale   language.Tag
	collator *collate.Collator

	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger

	lastKey  string
	lastPath []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLocale sets the collation locale used to compare labels.
func WithLocale(tag language.Tag) Option {
	return func(b *Builder) { b.locale = tag }
}

// WithCache persists computed paths in c under keys from keyer. A nil c
// disables the persistent cache.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(b *Builder) {
		b.cache = c
		b.keyer = keyer
		b.ttl = ttl
	}
}

// WithLogger sets the logger for cache diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a Builder. Without options it uses root-locale
// collation and no persistent cache.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{locale: language.Und}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.Default()
	}
	b.collator = collate.New(b.locale)
	return b
}

// Locale returns the collation locale.
func (b *Builder) Locale() language.Tag { return b.locale }

// Build computes the path for g without consulting any memo.
func (b *Builder) Build(g *graph.Graph) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return buildPath(g, AssignAnchors(g), b.collator)
}

// Path returns the path for g, reusing the last result when key matches the
// previous call's key and falling back to the configured cache. An empty key
// uses g.Version(). The returned slice is owned by the caller.
func (b *Builder) Path(ctx context.Context, key string, g *graph.Graph) []string {
	if key == "" {
		key = g.Version()
	}
	start := time.Now()

	b.mu.Lock()
	if key == b.lastKey && b.lastPath != nil {
		path := slices.Clone(b.lastPath)
		b.mu.Unlock()
		observability.Tour().OnPathBuilt(ctx, len(g.Nodes), len(path), true, time.Since(start))
		return path
	}
	b.mu.Unlock()

	if path, ok := b.lookup(ctx, key); ok {
		b.remember(key, path)
		observability.Tour().OnPathBuilt(ctx, len(g.Nodes), len(path), true, time.Since(start))
		return path
	}

	path := b.Build(g)
	b.remember(key, path)
	b.store(ctx, key, path)
	observability.Tour().OnPathBuilt(ctx, len(g.Nodes), len(path), false, time.Since(start))
	return path
}

// Forget drops the in-memory memo.
func (b *Builder) Forget() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastKey, b.lastPath = "", nil
}

func (b *Builder) remember(key string, path []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastKey, b.lastPath = key, slices.Clone(path)
}

func (b *Builder) lookup(ctx context.Context, version string) ([]string, bool) {
	if b.cache == nil {
		return nil, false
	}
	locale := b.locale.String()
	key := b.keyer.PathKey(version, locale)
	e, hit, err := cache.GetPath(ctx, b.cache, key, version, locale)
	if errors.Is(err, cache.ErrCorruptEntry) {
		b.logger.Warn("discarded corrupt path cache entry", "key", key)
		return nil, false
	}
	if err != nil {
		b.logger.Warn("path cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "path")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "path")
	return e.Path, true
}

func (b *Builder) store(ctx context.Context, version string, path []string) {
	if b.cache == nil {
		return
	}
	locale := b.locale.String()
	key := b.keyer.PathKey(version, locale)
	e := cache.PathEntry{Version: version, Locale: locale, Path: path, BuiltAt: time.Now().UTC()}
	n, err := cache.SetPath(ctx, b.cache, key, e, b.ttl)
	if err != nil {
		b.logger.Warn("path cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "path", n)
}
