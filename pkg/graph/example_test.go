package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/conceptgraph/pkg/graph"
)

func ExampleReadGraph() {
	input := `{
	  "nodes": [
	    {"id": "r", "type": "ROOT", "label": "Music"},
	    {"id": "c", "type": "CATEGORY", "label": "Baroque"},
	    {"id": "w", "type": "WORK", "label": "Goldberg Variations"}
	  ],
	  "links": [
	    {"source": {"id": "r"}, "target": {"id": "c"}},
	    {"source": "c", "target": "w", "relation": "includes"}
	  ]
	}`

	g, err := graph.ReadGraph(strings.NewReader(input))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	g.DeriveConnections()

	c, _ := g.NodeByID("c")
	fmt.Println("Nodes:", g.Len())
	fmt.Println("First link:", g.Links[0].Source, "->", g.Links[0].Target)
	fmt.Println("Connections of c:", c.Connections)
	// Output:
	// Nodes: 3
	// First link: r -> c
	// Connections of c: [r w]
}
