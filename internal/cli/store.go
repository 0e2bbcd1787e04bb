package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptgraph/pkg/store"
)

// storeCommand creates the store command with list, put, show and rm subcommands.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored graphs",
		Long:  `Manage graphs kept in the configured store (files or MongoDB).`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeShowCommand())
	cmd.AddCommand(c.storeRmCommand())

	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored graphs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				list, err := st.ListGraphs(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No stored graphs")
					printNextStep("Add one", "conceptgraph store put graph.json")
					return nil
				}
				fmt.Println(renderSummaryTable(list))
				return nil
			})
		},
	}
}

func renderSummaryTable(list []store.Summary) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{s.ID, s.Name, strconv.Itoa(s.Nodes), shortVersion(s.Version), s.UpdatedAt.Local().Format("2006-01-02 15:04")}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Nodes", "Version", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 2:
				return StyleNumber
			case col >= 3:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func shortVersion(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}

func (c *CLI) storePutCommand() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Store a graph file",
		Long: `Store a graph file. Without --id a new id is generated; with an existing
id the graph is replaced and its saved tour order is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			if name == "" && args[0] != "-" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			rec := &store.GraphRecord{ID: id, Name: name, Graph: &g}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.SaveGraph(cmd.Context(), rec); err != nil {
					return err
				}
				printSuccess("Stored %s", StyleHighlight.Render(rec.ID))
				printDetail("%d nodes, %d links", g.Len(), len(g.Links))
				printNextStep("Take the tour", "conceptgraph tour --id "+rec.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "graph id (default: generated)")
	cmd.Flags().StringVar(&name, "name", "", "display name (default: file name)")

	return cmd
}

func (c *CLI) storeShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored graph and its saved order",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completeGraphIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				rec, err := st.LoadGraph(ctx, args[0])
				if err != nil {
					return err
				}
				printKeyValue("ID", rec.ID)
				printKeyValue("Name", rec.Name)
				printKeyValue("Version", rec.Version)
				printKeyValue("Nodes", strconv.Itoa(rec.Graph.Len()))
				printKeyValue("Links", strconv.Itoa(len(rec.Graph.Links)))
				printKeyValue("Created", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				printKeyValue("Updated", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

				order, err := st.LoadOrder(ctx, rec.ID)
				switch {
				case err == nil:
					printKeyValue("Order", fmt.Sprintf("custom, %d stops", len(order.Path)))
				case errors.Is(err, store.ErrNotFound):
					printKeyValue("Order", "built")
				default:
					return err
				}
				return nil
			})
		},
	}
}

func (c *CLI) storeRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a stored graph and its saved order",
		Args:    cobra.ExactArgs(1),

		ValidArgsFunction: c.completeGraphIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.DeleteGraph(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
