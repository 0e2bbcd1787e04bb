// Package graph provides the concept-graph model and its serialization.
//
// A concept graph has a single [TypeRoot] node, zero or more [TypeCategory]
// nodes and any number of content nodes ([TypeConcept], [TypeWork]) joined
// by directed [Link] values. The guided tour in pkg/tour treats links as
// undirected; the relation label is carried for display only.
//
// # Core Types
//
//   - [Graph]: node list plus link list, the input contract for touring
//   - [Node]: stable domain record (id, type, label, connections)
//   - [Link]: directed edge whose endpoints are always plain node ids
//   - [Placement]: transient layout record keyed by node id
//
// Placement data lives in [Placements], never on [Node], so the tour
// algorithm stays free of rendering state.
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [{"id": "r", "type": "ROOT", "label": "Physics"}],
//	  "links": [{"source": "r", "target": "c1", "relation": "has"}]
//	}
//
// Link endpoints may also be written as objects ({"source": {"id": "r"}}),
// as produced by some visualization front-ends. They are normalized to ids
// while decoding.
//
//	g, _ := graph.ReadGraphFile("physics.json")
//	graph.WriteGraphFile(g, "out.json")
//	data, _ := graph.MarshalGraph(g)
//
// # Versioning
//
// [Graph.Version] returns a content hash that callers pass to the tour
// builder as an explicit memoization key.
package graph
