// Package nodelink renders concept graphs as node-link diagrams.
//
// # Overview
//
// Nodes are drawn by type: the ROOT as a bold double octagon, categories as
// filled boxes, concepts as ellipses and works as notes. Graph links are
// solid arrows. When a tour path is given, consecutive stops are joined by
// dashed, numbered edges so the reading order can be followed on the page.
//
// # Usage
//
//	path := tour.BuildPath(&g)
//	dot := nodelink.ToDOT(&g, nodelink.Options{Path: path, Current: path[0]})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Placements
//
// When [Options.Placements] holds positions from an external simulation,
// the diagram switches to the neato engine and pins each placed node at its
// recorded coordinates.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
