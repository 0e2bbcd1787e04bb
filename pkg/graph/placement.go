package graph

// Placement is the transient layout state of one node: position, velocity
// and whether the user pinned it. It is keyed by node id and kept apart
// from [Node].
type Placement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx,omitempty"`
	VY     float64 `json:"vy,omitempty"`
	Pinned bool    `json:"pinned,omitempty"`
}

// Placements maps node ids to their placement.
type Placements map[string]Placement

// Prune drops placements for ids that are no longer in g and returns the
// number removed.
func (p Placements) Prune(g *Graph) int {
	idx := g.Index()
	removed := 0
	for id := range p {
		if _, ok := idx[id]; !ok {
			delete(p, id)
			removed++
		}
	}
	return removed
}
