package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/conceptgraph/pkg/errors"
)

// =============================================================================
// Node Types
// =============================================================================

// NodeType classifies a node's role in the concept graph.
type NodeType string

const (
	TypeRoot     NodeType = "ROOT"
	TypeCategory NodeType = "CATEGORY"
	TypeConcept  NodeType = "CONCEPT"
	TypeWork     NodeType = "WORK"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case TypeRoot, TypeCategory, TypeConcept, TypeWork:
		return true
	}
	return false
}

// IsStructural reports whether t is ROOT or CATEGORY.
func (t NodeType) IsStructural() bool { return t == TypeRoot || t == TypeCategory }

// IsContent reports whether t is a content type (neither ROOT nor CATEGORY).
func (t NodeType) IsContent() bool { return !t.IsStructural() }

// =============================================================================
// Node
// =============================================================================

// Node represents a concept, person, work or structural element.
type Node struct {
	ID          string         `json:"id" bson:"id"`
	Type        NodeType       `json:"type" bson:"type"`
	Label       string         `json:"label,omitempty" bson:"label,omitempty"`
	Connections []string       `json:"connections,omitempty" bson:"connections,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Link
// =============================================================================

// Link is a directed edge between two nodes. Source and Target are always
// plain node ids.
type Link struct {
	Source   string `json:"source" bson:"source"`
	Target   string `json:"target" bson:"target"`
	Relation string `json:"relation,omitempty" bson:"relation,omitempty"`
}

// UnmarshalJSON accepts endpoints given either as id strings or as objects
// carrying an "id" field.
func (l *Link) UnmarshalJSON(data []byte) error {
	var raw struct {
		Source   json.RawMessage `json:"source"`
		Target   json.RawMessage `json:"target"`
		Relation string          `json:"relation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	src, err := endpointID(raw.Source)
	if err != nil {
		return fmt.Errorf("link source: %w", err)
	}
	dst, err := endpointID(raw.Target)
	if err != nil {
		return fmt.Errorf("link target: %w", err)
	}
	*l = Link{Source: src, Target: dst, Relation: raw.Relation}
	return nil
}

func endpointID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '{' {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", err
		}
		return obj.ID, nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", err
	}
	return id, nil
}

// =============================================================================
// Graph
// =============================================================================

// Graph is a finite set of nodes plus a set of links.
//
// Links may reference ids that are not in Nodes; consumers are expected to
// ignore them. Graph is a plain value and is not safe for concurrent mutation.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Link `json:"links" bson:"links"`
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.Nodes) }

// IDs returns node ids in list order.
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Index returns a lookup from id to node. The pointers alias g.Nodes.
func (g *Graph) Index() map[string]*Node {
	idx := make(map[string]*Node, len(g.Nodes))
	for i := range g.Nodes {
		idx[g.Nodes[i].ID] = &g.Nodes[i]
	}
	return idx
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Root returns the first ROOT node in list order.
func (g *Graph) Root() (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].Type == TypeRoot {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Categories returns the CATEGORY nodes in list order.
func (g *Graph) Categories() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Type == TypeCategory {
			out = append(out, n)
		}
	}
	return out
}

// Types returns a lookup from id to node type.
func (g *Graph) Types() map[string]NodeType {
	types := make(map[string]NodeType, len(g.Nodes))
	for _, n := range g.Nodes {
		types[n.ID] = n.Type
	}
	return types
}

// RemoveNode deletes the node with the given id together with every link
// touching it and every connection entry naming it. It reports whether the
// node existed.
func (g *Graph) RemoveNode(id string) bool {
	i := slices.IndexFunc(g.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	g.Nodes = slices.Delete(g.Nodes, i, i+1)
	g.Links = slices.DeleteFunc(g.Links, func(l Link) bool { return l.Source == id || l.Target == id })
	for i := range g.Nodes {
		g.Nodes[i].Connections = slices.DeleteFunc(g.Nodes[i].Connections, func(c string) bool { return c == id })
	}
	return true
}

// DeriveConnections rebuilds every node's Connections from the link set.
// Links with an unknown endpoint are skipped.
func (g *Graph) DeriveConnections() {
	idx := g.Index()
	for _, n := range idx {
		n.Connections = nil
	}
	for _, l := range g.Links {
		src, ok := idx[l.Source]
		if !ok {
			continue
		}
		dst, ok := idx[l.Target]
		if !ok {
			continue
		}
		if !slices.Contains(src.Connections, dst.ID) {
			src.Connections = append(src.Connections, dst.ID)
		}
		if !slices.Contains(dst.Connections, src.ID) {
			dst.Connections = append(dst.Connections, src.ID)
		}
	}
}

// Validate checks node ids and types. Dangling links are tolerated.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	roots := 0
	for _, n := range g.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidGraph, "node id must not be empty")
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeInvalidGraph, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if !n.Type.Valid() {
			return errors.New(errors.ErrCodeInvalidGraph, "node %q has unknown type %q", n.ID, n.Type)
		}
		if n.Type == TypeRoot {
			roots++
		}
	}
	if roots > 1 {
		return errors.New(errors.ErrCodeInvalidGraph, "graph has %d ROOT nodes, want at most 1", roots)
	}
	return nil
}

// Clone returns a deep copy of the node and link lists.
func (g *Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Links: slices.Clone(g.Links),
	}
	for i, n := range g.Nodes {
		n.Connections = slices.Clone(n.Connections)
		if n.Meta != nil {
			meta := make(map[string]any, len(n.Meta))
			for k, v := range n.Meta {
				meta[k] = v
			}
			n.Meta = meta
		}
		out.Nodes[i] = n
	}
	return out
}
