package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/conceptgraph/pkg/graph"
	"github.com/matzehuels/conceptgraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Path is the tour order to overlay. Ids not in the graph are skipped.
	Path []string

	// Current highlights one node, typically the tour cursor.
	Current string

	// Placements pins nodes at simulated positions (points, y up).
	Placements graph.Placements

	// Detailed adds the node type and metadata to labels.
	Detailed bool
}

// Tour edge color.
const tourColor = "#d0488f"

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=14, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [color=\"#888888\", arrowsize=0.7];\n")
	if len(opts.Placements) > 0 {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  overlap=false;\n")
	}
	buf.WriteString("\n")

	idx := g.Index()
	for _, n := range g.Nodes {
		attrs := fmtAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range g.Links {
		if idx[l.Source] == nil || idx[l.Target] == nil {
			continue
		}
		if l.Relation != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, fontsize=10];\n", l.Source, l.Target, l.Relation)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", l.Source, l.Target)
		}
	}

	if stops := tourStops(opts.Path, idx); len(stops) > 1 {
		buf.WriteString("\n")
		for i := 1; i < len(stops); i++ {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=%q, fontcolor=%q, constraint=false, label=\"%d\"];\n",
				stops[i-1], stops[i], tourColor, tourColor, i)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func tourStops(path []string, idx map[string]*graph.Node) []string {
	stops := make([]string, 0, len(path))
	for _, id := range path {
		if idx[id] != nil {
			stops = append(stops, id)
		}
	}
	return stops
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("type: %s", n.Type)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n graph.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	switch n.Type {
	case graph.TypeRoot:
		attrs = append(attrs, "shape=doubleoctagon", "fillcolor=\"#fde7a9\"", "fontsize=18")
	case graph.TypeCategory:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=\"#d6e6f5\"")
	case graph.TypeWork:
		attrs = append(attrs, "shape=note")
	default:
		attrs = append(attrs, "shape=ellipse")
	}
	if n.ID == opts.Current {
		attrs = append(attrs, "penwidth=3", fmt.Sprintf("color=%q", tourColor))
	}
	if p, ok := opts.Placements[n.ID]; ok {
		pin := ""
		if p.Pinned {
			pin = "!"
		}
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s%s\"", fmtFloat(p.X), fmtFloat(p.Y), pin))
	}
	return attrs
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
