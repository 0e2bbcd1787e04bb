package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/store"
)

// tourCommand creates the interactive tour command.
func (c *CLI) tourCommand() *cobra.Command {
	var (
		src      graphSource
		noCache  bool
		inactive bool
		save     string
	)

	cmd := &cobra.Command{
		Use:   "tour [file]",
		Short: "Step through a guided tour interactively",
		Long: `Step through a guided tour in the terminal.

Keys: n/→/space next, p/← previous, s start or stop, ⏎ jump to the selected
row, i node details, d delete the selected node, esc cancel or stop, q quit.
Drag rows with the mouse (or J/K) to rearrange the outline; categories move
with their content.

For stored graphs (--id) a rearranged order and deleted nodes are written
back on exit. For files, --save writes the edited graph to a new file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := src.fromArgs(args); err != nil {
				return err
			}
			return c.runTour(cmd.Context(), src, !inactive, noCache, save)
		},
	}

	src.addFlags(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the path cache")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "open the outline without starting the tour")
	cmd.Flags().StringVar(&save, "save", "", "write the edited graph to this file")

	return cmd
}

func (c *CLI) runTour(ctx context.Context, src graphSource, start, noCache bool, save string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	l, done, err := c.loadTour(ctx, src, noCache)
	if err != nil {
		return err
	}
	defer done()
	if len(l.path) == 0 {
		printWarning("The graph is empty")
		return nil
	}

	title := l.name
	if title == "" {
		title = l.id
	}
	if title == "" {
		title = src.file
	}
	m := newTourModel(ctx, l.graph, l.path, tourModelOptions{
		Title:           title,
		ScrollThreshold: float64(cfg.Outline.ScrollThreshold),
		ScrollMaxStep:   float64(cfg.Outline.ScrollMaxStep),
		Start:           start,
	})

	// Log lines would tear the alternate screen.
	c.Logger.SetOutput(io.Discard)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	c.Logger.SetOutput(c.logOut)
	if err != nil {
		return fmt.Errorf("tour: %w", err)
	}

	return c.persistTour(ctx, l, m, save)
}

// persistTour writes back what the session changed.
func (c *CLI) persistTour(ctx context.Context, l *loaded, m *tourModel, save string) error {
	if save != "" {
		if err := graph.WriteGraphFile(*m.graph, save); err != nil {
			return err
		}
		printFile(save)
	}
	if l.id == "" || (!m.orderChanged && !m.graphChanged) {
		return nil
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if m.graphChanged {
		rec := &store.GraphRecord{ID: l.id, Name: l.name, Graph: m.graph}
		if err := st.SaveGraph(ctx, rec); err != nil {
			return err
		}
		printSuccess("Saved graph %s", StyleHighlight.Render(l.id))
	}
	if err := st.SaveOrder(ctx, l.id, m.ctrl.Path()); err != nil {
		return err
	}
	printSuccess("Saved tour order for %s", StyleHighlight.Render(l.id))
	return nil
}
