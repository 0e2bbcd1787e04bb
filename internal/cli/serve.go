package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/conceptgraph/internal/api"
	"github.com/matzehuels/conceptgraph/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		noStore     bool
		noCache     bool
		maxSessions int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tours over HTTP",
		Long: `Serve the HTTP API for stored graphs and tour sessions.

Sessions live in memory; the least recently used one is dropped once more
than --max-sessions are open. With --no-store only inline graphs can be
toured and the /graphs routes answer 501.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noStore, noCache, maxSessions)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "run without a graph store")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the path cache")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", api.DefaultMaxSessions, "maximum open tour sessions")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noStore, noCache bool, maxSessions int) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	b, closeCache, err := c.newBuilder(ctx, noCache)
	if err != nil {
		return err
	}
	defer closeCache()

	var st store.Store
	if !noStore {
		if st, err = c.newStore(ctx); err != nil {
			return err
		}
		defer st.Close()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(api.Config{Store: st, Builder: b, Logger: c.Logger, MaxSessions: maxSessions}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("listening", "addr", addr, "store", !noStore)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.Logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
