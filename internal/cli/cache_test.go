package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/text/language"

	"github.com/matzehuels/conceptgraph/internal/config"
	"github.com/matzehuels/conceptgraph/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "conceptgraph")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg-cache", "conceptgraph"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestOpenFileCacheRefusesRedis(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendRedis
	c := New(io.Discard, LogInfo)
	c.config = &cfg

	if _, err := c.openFileCache(); err == nil {
		t.Error("openFileCache should fail for the redis backend")
	}
}

func TestNewBuilderScopesCacheKeys(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	cfg.Cache.Prefix = "team-a:"
	c := New(io.Discard, LogInfo)
	c.config = &cfg

	b, cleanup, err := c.newBuilder(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	want := b.Path(ctx, "v1", tuiGraph())

	fc, err := c.openFileCache()
	if err != nil {
		t.Fatal(err)
	}
	locale := language.Und.String()
	e, hit, err := cache.GetPath(ctx, fc, cache.Keyer{Prefix: "team-a:"}.PathKey("v1", locale), "v1", locale)
	if err != nil || !hit {
		t.Fatalf("scoped entry: hit %v, err %v", hit, err)
	}
	if !slices.Equal(e.Path, want) {
		t.Errorf("cached path = %v, want %v", e.Path, want)
	}
	if _, hit, _ := cache.GetPath(ctx, fc, cache.Keyer{}.PathKey("v1", locale), "v1", locale); hit {
		t.Error("unprefixed key should miss")
	}
}

func TestNewBuilderNoCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	c := New(io.Discard, LogInfo)
	c.config = &cfg

	b, cleanup, err := c.newBuilder(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	b.Path(context.Background(), "v1", tuiGraph())

	if _, err := os.Stat(cfg.Cache.Dir); !os.IsNotExist(err) {
		t.Error("--no-cache should not create the cache directory")
	}
}
