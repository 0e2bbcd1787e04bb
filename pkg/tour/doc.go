// Package tour builds and drives guided tours over a concept graph.
//
// # Path Construction
//
// [BuildPath] orders every node of a [graph.Graph] into a flat tour:
//
//	[root] [cat1, cat1's content...] [cat2, ...] ... [orphans...]
//
// Content nodes are assigned to their nearest CATEGORY by a multi-source
// breadth-first search over the undirected [Adjacency] of the link set
// ([AssignAnchors]). When two categories reach a node at the same hop
// distance, the category listed first in the graph wins. Within a category,
// content is ordered by distance, then WORK before other types, then label
// under locale-aware collation. Content unreachable from every category is
// appended at the end in list order.
//
// The result is deterministic: the same graph always yields the same path.
//
// # Memoization
//
// [Builder.Path] memoizes on an explicit key supplied by the caller,
// typically [graph.Graph.Version]. An optional [cache.Cache] persists paths
// across processes.
//
// # Navigation
//
// [Controller] holds the path and a cursor. It is either inactive or active
// at a valid index. Navigation and structural changes are reported to a
// [Listener] (focus a node, close the detail view, reset the camera, path
// changed). Node deletion is repaired locally so a manually reordered path
// survives.
//
// # Concurrency
//
// [Controller] assumes a single event-loop caller. Hosts that drive a tour
// from several goroutines wrap it in [Guarded].
package tour
