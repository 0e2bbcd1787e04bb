// Package pkg provides the core libraries for Conceptgraph guided tours.
//
// # Overview
//
// Conceptgraph takes a graph of concepts and works grouped under categories
// and a single root, and turns it into a linear guided tour that a reader can
// step through, rearrange and persist. The pkg directory is organized into:
//
//  1. [graph] - Graph model, placements and JSON serialization
//  2. [tour] - Adjacency, anchor assignment, path building and the tour controller
//  3. [outline] - Block-aware reordering and drag auto-scroll for the outline view
//  4. [store] - Persistence of graphs and custom tour orders (files, MongoDB)
//  5. [cache] - Path caching (file, Redis)
//  6. [render] - Node-link diagrams with the tour overlaid
//
// # Data Flow
//
//	graph JSON
//	    ↓
//	[graph] package (decode, validate, derive connections)
//	    ↓
//	[tour] package (multi-source BFS from categories, ordered path)
//	    ↓
//	[tour.Controller] (start / next / prev / jump / stop)
//	    ↓
//	[outline] package (drag blocks, ReplacePath keeps the cursor on its node)
//	    ↓
//	[store] package (saved order, reconciled on the next load)
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("philosophy.json")
//	b := tour.NewBuilder(tour.WithLocale(language.German))
//	path := b.Path(ctx, g.Version(), &g)
//
//	c := tour.NewController(b, listener)
//	c.StartPath(path)
//	c.Next()
//
//	r := outline.NewReorderer(c, g.Types())
//	r.DragStart(4)
//	r.DragOver(1, y, rowTop, rowHeight)
//	r.Drop()
//
// # Supporting Packages
//
//   - [errors] - Error codes shared by the CLI and the HTTP API
//   - [httputil] - JSON request and response helpers
//   - [observability] - Hooks for tour, cache and HTTP events
//   - [buildinfo] - Version information set at build time
//
// [graph]: github.com/matzehuels/conceptgraph/pkg/graph
// [tour]: github.com/matzehuels/conceptgraph/pkg/tour
// [tour.Controller]: github.com/matzehuels/conceptgraph/pkg/tour#Controller
// [outline]: github.com/matzehuels/conceptgraph/pkg/outline
// [store]: github.com/matzehuels/conceptgraph/pkg/store
// [cache]: github.com/matzehuels/conceptgraph/pkg/cache
// [render]: github.com/matzehuels/conceptgraph/pkg/render
// [errors]: github.com/matzehuels/conceptgraph/pkg/errors
// [httputil]: github.com/matzehuels/conceptgraph/pkg/httputil
// [observability]: github.com/matzehuels/conceptgraph/pkg/observability
// [buildinfo]: github.com/matzehuels/conceptgraph/pkg/buildinfo
package pkg
