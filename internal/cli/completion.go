package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptgraph/pkg/store"
)

// completionTimeout bounds store access while the shell waits for
// completions.
const completionTimeout = 2 * time.Second

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for conceptgraph.

Besides commands and flags, the scripts complete stored graph ids for --id,
"store show" and "store rm", and output formats for "render --format". Ids
are read from the configured store each time you press tab.

  $ source <(conceptgraph completion bash)
  $ conceptgraph completion zsh > "${fpath[1]}/_conceptgraph"
  $ conceptgraph completion fish | source
  PS> conceptgraph completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// registerCompletions attaches dynamic completions to every command below
// root that reads a graph by id or takes a render format. Only top-level
// commands read graphs through --id; "store put --id" names a new one.
func (c *CLI) registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		if cmd.Flags().Lookup("id") != nil && !cmd.Parent().HasParent() {
			_ = cmd.RegisterFlagCompletionFunc("id", c.completeGraphIDFlag)
		}
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", completeRenderFormat)
		}
		c.registerCompletions(cmd)
	}
}

func (c *CLI) completeGraphIDFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return c.completeGraphIDs(toComplete)
}

// completeGraphIDArg completes the single id argument of store subcommands.
func (c *CLI) completeGraphIDArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeGraphIDs(toComplete)
}

func (c *CLI) completeGraphIDs(prefix string) ([]string, cobra.ShellCompDirective) {
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	var ids []string
	err := c.withStore(ctx, func(st store.Store) error {
		var err error
		ids, err = graphIDCompletions(ctx, st, prefix)
		return err
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// graphIDCompletions lists stored ids starting with prefix as "id\tdescription"
// pairs, describing each graph by name and size.
func graphIDCompletions(ctx context.Context, st store.Store, prefix string) ([]string, error) {
	list, err := st.ListGraphs(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, s := range list {
		if !strings.HasPrefix(s.ID, prefix) {
			continue
		}
		desc := fmt.Sprintf("%d nodes", s.Nodes)
		if s.Name != "" {
			desc = s.Name + ", " + desc
		}
		out = append(out, s.ID+"\t"+desc)
	}
	return out, nil
}

func completeRenderFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"svg\tscalable vector graphics",
		"png\traster image (needs rsvg-convert)",
		"pdf\tprintable document (needs rsvg-convert)",
		"dot\tGraphviz source",
	}, cobra.ShellCompDirectiveNoFileComp
}
