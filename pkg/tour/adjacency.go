package tour

import "github.com/matzehuels/conceptgraph/pkg/graph"

// Adjacency returns the undirected neighbor lists of ids under links.
// Every id gets an entry. Links whose source or target is not in ids are
// dropped. Neighbor order follows link order.
func Adjacency(ids []string, links []graph.Link) map[string][]string {
	adj := make(map[string][]string, len(ids))
	for _, id := range ids {
		adj[id] = nil
	}
	for _, l := range links {
		if _, ok := adj[l.Source]; !ok {
			continue
		}
		if _, ok := adj[l.Target]; !ok {
			continue
		}
		adj[l.Source] = append(adj[l.Source], l.Target)
		adj[l.Target] = append(adj[l.Target], l.Source)
	}
	return adj
}
