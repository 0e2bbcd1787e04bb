package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKeyerPathKey(t *testing.T) {
	var k Keyer

	pk1 := k.PathKey("v1", "en")
	pk2 := k.PathKey("v1", "sv")
	pk3 := k.PathKey("v2", "en")
	if pk1 == pk2 {
		t.Error("different locales should produce different keys")
	}
	if pk1 == pk3 {
		t.Error("different graph versions should produce different keys")
	}
	if pk1 != k.PathKey("v1", "en") {
		t.Error("PathKey should be deterministic")
	}
	if !strings.HasPrefix(pk1, "path:") || len(pk1) != len("path:")+64 {
		t.Errorf("unexpected key shape: %s", pk1)
	}
	if k.PathKey("ab", "c") == k.PathKey("a", "bc") {
		t.Error("version and locale must not run together")
	}
}

func TestKeyerPrefix(t *testing.T) {
	plain := Keyer{}.PathKey("v1", "")
	scoped := Keyer{Prefix: "conceptgraph:staging:"}.PathKey("v1", "")
	if scoped != "conceptgraph:staging:"+plain {
		t.Errorf("scoped key = %s, want prefix on %s", scoped, plain)
	}
}

func newTestFileCache(t *testing.T) *FileCache {
	t.Helper()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return c
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c := newTestFileCache(t)
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`["r","c1"]`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v", hit, err)
	}
	if string(data) != `["r","c1"]` {
		t.Errorf("Get(k) = %s", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCacheRejectsNonJSON(t *testing.T) {
	c := newTestFileCache(t)
	if err := c.Set(context.Background(), "k", []byte("not json"), 0); err == nil {
		t.Error("Set should reject a non-JSON value")
	}
}

func TestFileCacheLayout(t *testing.T) {
	c := newTestFileCache(t)
	if err := c.Set(context.Background(), "k", []byte(`{}`), 0); err != nil {
		t.Fatal(err)
	}
	d := digest("k")
	if _, err := os.Stat(filepath.Join(c.Dir(), d[:2], d+".json")); err != nil {
		t.Errorf("entry not at the expected path: %v", err)
	}
}

func TestFileCacheExpired(t *testing.T) {
	ctx := context.Background()
	c := newTestFileCache(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte(`"v"`), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c := newTestFileCache(t)
	for _, k := range []string{"one", "two", "three"} {
		if err := c.Set(ctx, k, []byte(`[]`), 0); err != nil {
			t.Fatal(err)
		}
	}
	notes := filepath.Join(c.Dir(), "notes.txt")
	if err := os.WriteFile(notes, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	count, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("cleared %d entries, want 3", count)
	}
	d := digest("one")
	if _, err := os.Stat(filepath.Join(c.Dir(), d[:2])); !os.IsNotExist(err) {
		t.Error("empty shard directory should be removed")
	}
	if _, err := os.Stat(notes); err != nil {
		t.Error("non-cache files should be kept")
	}
}

func TestFileCacheClearMissingDir(t *testing.T) {
	c := &FileCache{dir: filepath.Join(t.TempDir(), "absent"), now: time.Now}
	count, err := c.Clear()
	if err != nil || count != 0 {
		t.Errorf("Clear(missing) = %d, %v", count, err)
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c := newTestFileCache(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte(`[]`), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte(`[]`), 0); err != nil {
		t.Fatal(err)
	}
	d := digest("broken")
	if err := os.MkdirAll(filepath.Join(c.Dir(), d[:2]), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(c.Dir(), d[:2], d+".json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	now = now.Add(time.Hour)
	count, err := c.Prune()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("pruned %d entries, want 2", count)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should survive Prune")
	}
}

func TestPathEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestFileCache(t)
	key := Keyer{}.PathKey("v1", "de")
	in := PathEntry{Version: "v1", Locale: "de", Path: []string{"r", "c1", "a"}, BuiltAt: time.Now().UTC()}

	n, err := SetPath(ctx, c, key, in, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Error("SetPath should report the encoded size")
	}

	out, hit, err := GetPath(ctx, c, key, "v1", "de")
	if err != nil || !hit {
		t.Fatalf("GetPath = hit %v, err %v", hit, err)
	}
	if strings.Join(out.Path, ",") != "r,c1,a" {
		t.Errorf("path = %v", out.Path)
	}

	if _, hit, _ := GetPath(ctx, c, key, "v2", "de"); hit {
		t.Error("entry built for another version should miss")
	}
	if _, hit, _ := GetPath(ctx, c, key, "v1", "sv"); hit {
		t.Error("entry built for another locale should miss")
	}
}

func TestGetPathCorrupt(t *testing.T) {
	ctx := context.Background()
	c := newTestFileCache(t)
	if err := c.Set(ctx, "k", []byte(`{"version": 7}`), 0); err != nil {
		t.Fatal(err)
	}

	_, hit, err := GetPath(ctx, c, "k", "v1", "")
	if hit || !errors.Is(err, ErrCorruptEntry) {
		t.Fatalf("GetPath = hit %v, err %v; want ErrCorruptEntry", hit, err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("corrupt entry should be deleted")
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if !errors.Is(classify(redis.Nil), ErrCacheMiss) {
		t.Error("redis.Nil should map to ErrCacheMiss")
	}
	if IsRetryable(classify(context.Canceled)) {
		t.Error("context cancellation must not be retried")
	}
	if !IsRetryable(classify(timeoutErr{})) {
		t.Error("timeouts should be retryable")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrBackend)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrBackend.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrCacheMiss) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrCacheMiss
	})
	if err != ErrCacheMiss {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrBackend)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrBackend)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
