// Package render provides output conversion shared by the renderers.
//
// The [nodelink] subpackage turns a concept graph and its tour path into
// Graphviz DOT and SVG. [ToPDF] and [ToPNG] convert any SVG to other formats
// using the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Path: path})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/conceptgraph/pkg/render/nodelink
package render
