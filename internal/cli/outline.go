package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/outline"
)

// outlineCommand creates the outline command.
func (c *CLI) outlineCommand() *cobra.Command {
	var (
		src     graphSource
		moves   []string
		save    bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "outline [file]",
		Short: "Print the tour outline and rearrange it",
		Long: `Print the tour outline, indented by node type.

--move FROM:TO moves the row at FROM (1-based, as printed) so it lands
before row TO; TO may be one past the last row. Dragging a category or the
root carries every content row below it up to the next category. Moves are
applied in order. With --save, the result is stored as the custom order of
a stored graph (requires --id).`,
		Example: `  conceptgraph outline philosophy.json --move 7:2
  conceptgraph outline --id philo --move 5:1 --move 9:3 --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := src.fromArgs(args); err != nil {
				return err
			}
			if save && src.id == "" {
				return fmt.Errorf("--save requires --id")
			}
			return c.runOutline(cmd.Context(), src, moves, save, noCache)
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringArrayVar(&moves, "move", nil, "block move FROM:TO (repeatable)")
	cmd.Flags().BoolVar(&save, "save", false, "store the rearranged order")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the path cache")

	return cmd
}

func (c *CLI) runOutline(ctx context.Context, src graphSource, moves []string, save, noCache bool) error {
	l, done, err := c.loadTour(ctx, src, noCache)
	if err != nil {
		return err
	}
	defer done()

	path, err := applyMoves(l.path, l.graph.Types(), moves)
	if err != nil {
		return err
	}

	idx := l.graph.Index()
	width := len(strconv.Itoa(len(path)))
	for i, id := range path {
		num := StyleDim.Render(fmt.Sprintf("%*d", width, i+1))
		if n, ok := idx[id]; ok {
			fmt.Println(num + " " + outlineLabel(n))
		}
	}

	if !save {
		return nil
	}
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SaveOrder(ctx, l.id, path); err != nil {
		return err
	}
	printNewline()
	printSuccess("Saved custom order for %s", StyleHighlight.Render(l.id))
	return nil
}

// applyMoves applies FROM:TO block moves given with 1-based rows.
func applyMoves(path []string, types map[string]graph.NodeType, moves []string) ([]string, error) {
	for _, m := range moves {
		from, to, err := parseMove(m)
		if err != nil {
			return nil, err
		}
		start := from - 1
		size := outline.BlockSize(path, types, start)
		if size == 0 {
			return nil, fmt.Errorf("move %q: row %d is outside the outline", m, from)
		}
		if to < 1 || to > len(path)+1 {
			return nil, fmt.Errorf("move %q: target %d is outside 1..%d", m, to, len(path)+1)
		}
		path = outline.Move(path, start, size, to-1)
	}
	return path, nil
}

func parseMove(s string) (from, to int, err error) {
	a, b, ok := strings.Cut(s, ":")
	if ok {
		from, err = strconv.Atoi(strings.TrimSpace(a))
	}
	if ok && err == nil {
		to, err = strconv.Atoi(strings.TrimSpace(b))
	}
	if !ok || err != nil {
		return 0, 0, fmt.Errorf("invalid move %q, want FROM:TO", s)
	}
	return from, to, nil
}
