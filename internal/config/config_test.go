package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
locale = "sv"

[cache]
backend = "redis"
redis_addr = "cache:6379"
prefix = "conceptgraph:staging:"
ttl = "90m"

[outline]
scroll_max_step = 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Prefix != "conceptgraph:staging:" {
		t.Errorf("prefix = %q", cfg.Cache.Prefix)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("ttl = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Outline.ScrollMaxStep != 5 || cfg.Outline.ScrollThreshold != 2 {
		t.Errorf("outline = %+v", cfg.Outline)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("untouched section lost its default: %+v", cfg.Store)
	}
	tag, _ := cfg.LocaleTag()
	if tag.String() != "sv" {
		t.Errorf("LocaleTag = %v, want sv", tag)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "locale = "},
		{"unknown key", "colour = \"red\""},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"bad locale", "locale = \"not a locale!\""},
		{"unknown store", "[store]\nbackend = \"sqlite\""},
		{"mongo without uri", "[store]\nbackend = \"mongo\""},
		{"unknown cache", "[cache]\nbackend = \"memcached\""},
		{"negative scroll", "[outline]\nscroll_threshold = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if code := cgerrors.GetCode(err); code != cgerrors.ErrCodeInvalidInput {
				t.Errorf("code = %q, want INVALID_INPUT (err %v)", code, err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "conceptgraph", "config.toml"); got != want {
		t.Errorf("DefaultPath = %q, want %q", got, want)
	}
}
