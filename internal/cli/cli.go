package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptgraph/internal/config"
	"github.com/matzehuels/conceptgraph/pkg/buildinfo"
	"github.com/matzehuels/conceptgraph/pkg/cache"
	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/observability"
	"github.com/matzehuels/conceptgraph/pkg/store"
	"github.com/matzehuels/conceptgraph/pkg/store/mongo"
	"github.com/matzehuels/conceptgraph/pkg/tour"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "conceptgraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	logOut io.Writer

	configPath string
	verbose    bool
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), logOut: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Conceptgraph builds guided tours through concept graphs",
		Long:          `Conceptgraph turns a graph of concepts, works and categories into a deterministic guided tour, lets you step through it and rearrange it, and serves tours over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			observability.SetTourHooks(&logHooks{logger: c.Logger})
			observability.SetCacheHooks(&logHooks{logger: c.Logger})
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/conceptgraph/config.toml)")

	root.AddCommand(c.pathCommand())
	root.AddCommand(c.tourCommand())
	root.AddCommand(c.outlineCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// =============================================================================
// Configuration and Backends
// =============================================================================

// loadConfig reads the config file once per process.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.config != nil {
		return *c.config, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	c.config = &cfg
	return cfg, nil
}

// newCache opens the configured path cache. A nil cache means caching is
// disabled.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				c.Logger.Warn("path cache disabled", "err", err)
				return nil, nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// newBuilder creates a path builder with the configured locale and cache.
// The returned cleanup closes the cache.
func (c *CLI) newBuilder(ctx context.Context, noCache bool) (*tour.Builder, func(), error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	tag, err := cfg.LocaleTag()
	if err != nil {
		return nil, nil, err
	}
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	b := tour.NewBuilder(
		tour.WithLocale(tag),
		tour.WithCache(ch, cache.Keyer{Prefix: cfg.Cache.Prefix}, cfg.Cache.TTL.Duration),
		tour.WithLogger(c.Logger),
	)
	cleanup := func() {
		if ch != nil {
			ch.Close()
		}
	}
	return b, cleanup, nil
}

// newStore opens the configured graph store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case config.BackendMongo:
		return mongo.New(ctx, mongo.Config{URI: cfg.Store.MongoURI, Database: cfg.Store.MongoDatabase})
	default:
		return store.NewFileStore(cfg.Store.Dir)
	}
}

// =============================================================================
// Graph Input
// =============================================================================

// graphSource names where a command reads its graph from: a JSON file
// ("-" for stdin) or a stored graph id.
type graphSource struct {
	file string
	id   string
}

func (s *graphSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.id, "id", "", "read the graph from the store instead of a file")
}

func (s *graphSource) fromArgs(args []string) error {
	switch {
	case s.id != "" && len(args) > 0:
		return fmt.Errorf("give either a file or --id, not both")
	case s.id == "" && len(args) == 0:
		return fmt.Errorf("a graph file or --id is required")
	case len(args) > 0:
		s.file = args[0]
	}
	return nil
}

// loaded is a graph together with its tour path.
type loaded struct {
	graph   *graph.Graph
	path    []string
	id      string
	name    string
	version string
}

// loadTour reads the graph and builds its path. For stored graphs the saved
// order is reconciled into the path.
func (c *CLI) loadTour(ctx context.Context, src graphSource, noCache bool) (*loaded, func(), error) {
	b, closeCache, err := c.newBuilder(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}

	if src.id != "" {
		st, err := c.newStore(ctx)
		if err != nil {
			closeCache()
			return nil, nil, err
		}
		rec, path, err := store.TourPath(ctx, st, b, src.id)
		if err != nil {
			closeCache()
			st.Close()
			return nil, nil, err
		}
		l := &loaded{graph: rec.Graph, path: path, id: rec.ID, name: rec.Name, version: rec.Version}
		return l, func() { st.Close(); closeCache() }, nil
	}

	g, err := readGraph(src.file)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	l := &loaded{graph: &g, version: g.Version()}
	l.path = b.Path(ctx, l.version, &g)
	return l, closeCache, nil
}

func readGraph(file string) (graph.Graph, error) {
	if file == "-" {
		return graph.ReadGraph(os.Stdin)
	}
	return graph.ReadGraphFile(file)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/conceptgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports tour and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnPathBuilt(_ context.Context, nodes, pathLen int, cached bool, dur time.Duration) {
	h.logger.Debug("path built", "nodes", nodes, "stops", pathLen, "cached", cached, "took", dur.Round(time.Microsecond))
}

func (h *logHooks) OnStep(_ context.Context, op string, cursor int, active bool) {
	h.logger.Debug("tour step", "op", op, "cursor", cursor, "active", active)
}

func (h *logHooks) OnReorder(_ context.Context, start, size, insert int) {
	h.logger.Debug("outline reorder", "start", start, "size", size, "insert", insert)
}

func (h *logHooks) OnNodeRemoved(_ context.Context, id string, pathLen int) {
	h.logger.Debug("node removed", "id", id, "stops", pathLen)
}

func (h *logHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h *logHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h *logHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}
