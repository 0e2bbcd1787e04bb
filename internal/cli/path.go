package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/tour"
)

// pathRow is one stop of the tour as printed by the path command.
type pathRow struct {
	Index    int            `json:"index"`
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     graph.NodeType `json:"type"`
	Anchor   string         `json:"anchor,omitempty"`
	Distance int            `json:"distance"`
}

// pathCommand creates the path command.
func (c *CLI) pathCommand() *cobra.Command {
	var (
		src     graphSource
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "path [file]",
		Short: "Print the guided tour order of a graph",
		Long: `Print the guided tour order of a graph.

Content nodes are grouped under the category that reaches them first in a
breadth-first search from all categories at once. Within a category, nearer
nodes come first, works before concepts, then labels in collation order.
Nodes no category reaches are listed last.

Use - to read the graph from stdin, or --id for a stored graph.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := src.fromArgs(args); err != nil {
				return err
			}
			return c.runPath(cmd.Context(), src, asJSON, noCache)
		},
	}

	src.addFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the path cache")

	return cmd
}

func (c *CLI) runPath(ctx context.Context, src graphSource, asJSON, noCache bool) error {
	prog := newProgress(c.Logger)
	l, done, err := c.loadTour(ctx, src, noCache)
	if err != nil {
		return err
	}
	defer done()

	rows := pathRows(l.graph, l.path)
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Println(renderPathTable(l.graph, rows))
	printStats(l.graph.Len(), len(l.graph.Links), len(l.path), false)
	prog.done(fmt.Sprintf("Built tour of %d stops", len(l.path)))
	return nil
}

// pathRows annotates a path with anchors and distances. Structural nodes and
// orphans have distance -1.
func pathRows(g *graph.Graph, path []string) []pathRow {
	a := tour.AssignAnchors(g)
	idx := g.Index()
	rows := make([]pathRow, 0, len(path))
	for i, id := range path {
		row := pathRow{Index: i, ID: id, Label: id, Distance: -1}
		if n, ok := idx[id]; ok {
			row.Label = n.DisplayLabel()
			row.Type = n.Type
		}
		if !a.Orphan(id) {
			row.Anchor = a.Anchor[id]
			row.Distance = a.Distance[id]
		}
		rows = append(rows, row)
	}
	return rows
}

func renderPathTable(g *graph.Graph, rows []pathRow) string {
	idx := g.Index()
	data := make([][]string, len(rows))
	for i, r := range rows {
		label := r.Label
		if n, ok := idx[r.ID]; ok {
			label = outlineLabel(n)
		}
		anchor, dist := "", ""
		if r.Distance >= 0 {
			anchor = r.Anchor
			if n, ok := idx[r.Anchor]; ok {
				anchor = n.DisplayLabel()
			}
			dist = strconv.Itoa(r.Distance)
		} else if r.Type.IsContent() {
			anchor = StyleWarning.Render("orphan")
		}
		data[i] = []string{strconv.Itoa(r.Index + 1), label, string(r.Type), anchor, dist}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Node", "Type", "Anchor", "Hops").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 || col == 4 {
				return StyleNumber
			}
			if col == 2 || col == 3 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
