// Package config loads the conceptgraph configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/conceptgraph/config.toml
// (falling back to ~/.config). A missing file is not an error: every field
// has a default and command-line flags override file values.
//
//	locale = "de"
//
//	[store]
//	backend = "file"        # or "mongo"
//	dir = "~/.config/conceptgraph/store"
//
//	[cache]
//	backend = "redis"       # "file", "redis" or "none"
//	redis_addr = "localhost:6379"
//	prefix = "conceptgraph:staging:"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
//	[outline]
//	scroll_threshold = 2
//	scroll_max_step = 3
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

// Backend names.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration.
type Config struct {
	// Locale is a BCP 47 tag used to collate labels. Empty means root order.
	Locale  string        `toml:"locale"`
	Store   StoreConfig   `toml:"store"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
	Outline OutlineConfig `toml:"outline"`
}

// StoreConfig selects where graphs and custom orders are kept.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects the path cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"` // namespaces keys in a shared Redis
	TTL       Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// OutlineConfig tunes drag auto-scroll in the outline, in rows.
type OutlineConfig struct {
	ScrollThreshold float64 `toml:"scroll_threshold"`
	ScrollMaxStep   float64 `toml:"scroll_max_step"`
}

// Duration is a time.Duration written as a string such as "90m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend:       BackendFile,
			MongoDatabase: "conceptgraph",
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Server: ServerConfig{Addr: ":8080"},
		Outline: OutlineConfig{
			ScrollThreshold: 2,
			ScrollMaxStep:   3,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "conceptgraph", "config.toml"), nil
}

// Load reads the file at path over the defaults and validates the result.
// An empty path means DefaultPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return cfg, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, cgerrors.New(cgerrors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate checks backend names, the locale and the outline tuning.
func (c Config) Validate() error {
	if _, err := c.LocaleTag(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return cgerrors.New(cgerrors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Outline.ScrollThreshold < 0 || c.Outline.ScrollMaxStep < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "outline scroll settings must not be negative")
	}
	return nil
}

// LocaleTag parses Locale. An empty locale is language.Und.
func (c Config) LocaleTag() (language.Tag, error) {
	if c.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "invalid locale %q", c.Locale)
	}
	return tag, nil
}
