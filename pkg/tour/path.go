package tour

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/conceptgraph/pkg/graph"
)

// Assignment maps content node ids to their anchor category and hop distance.
// Orphans have no entry.
type Assignment struct {
	Anchor   map[string]string
	Distance map[string]int
}

// Orphan reports whether id was left unassigned.
func (a Assignment) Orphan(id string) bool {
	_, ok := a.Anchor[id]
	return !ok
}

type bfsItem struct {
	id     string
	anchor string
	dist   int
}

// AssignAnchors runs a multi-source BFS seeded with every CATEGORY node in
// list order. Each content node is claimed by the first wavefront that
// reaches it. ROOT nodes are never expanded through and never assigned.
func AssignAnchors(g *graph.Graph) Assignment {
	types := g.Types()
	adj := Adjacency(g.IDs(), g.Links)

	a := Assignment{
		Anchor:   make(map[string]string),
		Distance: make(map[string]int),
	}
	visited := make(map[string]bool, len(g.Nodes))
	var queue []bfsItem

	for _, n := range g.Nodes {
		switch n.Type {
		case graph.TypeCategory:
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			queue = append(queue, bfsItem{id: n.ID, anchor: n.ID})
		case graph.TypeRoot:
			visited[n.ID] = true
		}
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if types[cur.id].IsContent() {
			if _, done := a.Anchor[cur.id]; !done {
				a.Anchor[cur.id] = cur.anchor
				a.Distance[cur.id] = cur.dist
			}
		}
		for _, next := range adj[cur.id] {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, bfsItem{id: next, anchor: cur.anchor, dist: cur.dist + 1})
		}
	}
	return a
}

// BuildPath returns the tour path of g using root-locale collation for
// labels. See [Builder] for other locales and memoization.
func BuildPath(g *graph.Graph) []string {
	return buildPath(g, AssignAnchors(g), collate.New(language.Und))
}

func buildPath(g *graph.Graph, a Assignment, col *collate.Collator) []string {
	path := make([]string, 0, len(g.Nodes))
	if root, ok := g.Root(); ok {
		path = append(path, root.ID)
	}

	children := make(map[string][]*graph.Node)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if anchor, ok := a.Anchor[n.ID]; ok {
			children[anchor] = append(children[anchor], n)
		}
	}

	for _, cat := range g.Categories() {
		path = append(path, cat.ID)
		kids := children[cat.ID]
		slices.SortStableFunc(kids, func(x, y *graph.Node) int {
			if dx, dy := a.Distance[x.ID], a.Distance[y.ID]; dx != dy {
				return dx - dy
			}
			if wx, wy := x.Type == graph.TypeWork, y.Type == graph.TypeWork; wx != wy {
				if wx {
					return -1
				}
				return 1
			}
			return col.CompareString(x.Label, y.Label)
		})
		for _, k := range kids {
			path = append(path, k.ID)
		}
	}

	for _, n := range g.Nodes {
		if n.Type.IsContent() && a.Orphan(n.ID) {
			path = append(path, n.ID)
		}
	}
	return path
}
