package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptgraph/internal/config"
	"github.com/matzehuels/conceptgraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the tour path cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// openFileCache opens the file cache backend. Redis entries expire on
// their own and are not managed from here.
func (c *CLI) openFileCache() (*cache.FileCache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Backend == config.BackendRedis {
		return nil, fmt.Errorf("the cache backend is redis at %s; entries expire after %s", cfg.Cache.RedisAddr, cfg.Cache.TTL)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		if dir, err = cacheDir(); err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
	}
	return cache.NewFileCache(dir)
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached tour paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.openFileCache()
			if err != nil {
				return err
			}
			sweep, what := fc.Clear, "cached paths"
			if expired {
				sweep, what = fc.Prune, "expired paths"
			}
			count, err := sweep()
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("No %s to remove", what)
				return nil
			}
			printSuccess("Removed %d %s", count, what)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired or unreadable entries")

	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.openFileCache()
			if err != nil {
				return err
			}
			fmt.Println(fc.Dir())
			return nil
		},
	}
}
