package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/render/nodelink"
)

// validFormats lists the output formats the render command accepts.
var validFormats = map[string]bool{"dot": true, "svg": true, "pdf": true, "png": true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file path ("-" for stdout)
	format    string  // dot, svg, pdf or png
	detailed  bool    // add node types to labels
	noTour    bool    // omit the tour edges
	current   int     // 1-based stop to highlight, 0 for none
	positions string  // JSON file of placements keyed by node id
	scale     float64 // PNG scale factor
	noCache   bool
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var src graphSource
	opts := renderOpts{format: "svg", scale: 2}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph with its tour as DOT, SVG, PDF or PNG",
		Long: `Render a graph as a node-link diagram with the tour drawn as numbered
dashed edges.

PDF and PNG output need rsvg-convert (librsvg). --positions pins nodes at
coordinates from a JSON object of {"id": {"x": .., "y": ..}}.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := src.fromArgs(args); err != nil {
				return err
			}
			opts.format = strings.ToLower(opts.format)
			if !validFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be dot, svg, pdf or png)", opts.format)
			}
			return c.runRender(cmd.Context(), src, &opts)
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with format extension, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node types in labels")
	cmd.Flags().BoolVar(&opts.noTour, "no-tour", false, "omit the tour edges")
	cmd.Flags().IntVar(&opts.current, "current", 0, "highlight the given tour stop (1-based)")
	cmd.Flags().StringVar(&opts.positions, "positions", "", "JSON file with node placements")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the path cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, src graphSource, opts *renderOpts) error {
	prog := newProgress(c.Logger)
	spin := startSpinner(ctx, os.Stderr, "Loading tour")
	defer spin.Stop()

	l, done, err := c.loadTour(ctx, src, opts.noCache)
	if err != nil {
		return err
	}
	defer done()

	dotOpts := nodelink.Options{Detailed: opts.detailed}
	if !opts.noTour {
		dotOpts.Path = l.path
	}
	if opts.current != 0 {
		if opts.current < 1 || opts.current > len(l.path) {
			return fmt.Errorf("--current %d is outside 1..%d", opts.current, len(l.path))
		}
		dotOpts.Current = l.path[opts.current-1]
	}
	if opts.positions != "" {
		p, err := readPlacements(opts.positions, l.graph)
		if err != nil {
			return err
		}
		c.Logger.Debug("placements loaded", "nodes", len(p))
		dotOpts.Placements = p
	}

	dot := nodelink.ToDOT(l.graph, dotOpts)
	spin.Stage(fmt.Sprintf("Rendering %s of %d stops", strings.ToUpper(opts.format), len(l.path)))
	data, err := renderDOT(ctx, dot, opts)
	spin.Stop()
	if spin.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	c.Logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	path := outputPath(opts.output, src, l, opts.format)
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	if path != "" {
		prog.done(fmt.Sprintf("Rendered %s", path))
	}
	return nil
}

func renderDOT(ctx context.Context, dot string, opts *renderOpts) ([]byte, error) {
	if opts.format == "dot" {
		return []byte(dot), nil
	}

	switch opts.format {
	case "pdf":
		return nodelink.RenderPDF(ctx, dot)
	case "png":
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	default:
		return nodelink.RenderSVG(ctx, dot)
	}
}

// outputPath picks the output file. An empty result means stdout.
func outputPath(output string, src graphSource, l *loaded, format string) string {
	switch {
	case output == "-":
		return ""
	case output != "":
		return output
	case src.file != "" && src.file != "-":
		return strings.TrimSuffix(src.file, filepath.Ext(src.file)) + "." + format
	case l.id != "":
		return l.id + "." + format
	default:
		return ""
	}
}

// readPlacements loads node positions and drops those for unknown ids.
func readPlacements(path string, g *graph.Graph) (graph.Placements, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p graph.Placements
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse placements: %w", err)
	}
	p.Prune(g)
	return p, nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns os.Stdout for an empty path and creates the file otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
