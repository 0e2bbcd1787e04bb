package outline

import (
	"slices"

	"github.com/matzehuels/conceptgraph/pkg/graph"
)

// Indent returns the outline indentation level for a node type:
// 0 for ROOT, 1 for CATEGORY and 2 for content.
func Indent(t graph.NodeType) int {
	switch t {
	case graph.TypeRoot:
		return 0
	case graph.TypeCategory:
		return 1
	default:
		return 2
	}
}

// BlockSize returns the number of rows moved together when row i is dragged.
// Content rows have size 1. A ROOT or CATEGORY row takes every following
// content row with it, up to the next structural row or the end of the path.
// Out-of-range indexes have size 0.
func BlockSize(path []string, types map[string]graph.NodeType, i int) int {
	if i < 0 || i >= len(path) {
		return 0
	}
	if !types[path[i]].IsStructural() {
		return 1
	}
	size := 1
	for j := i + 1; j < len(path) && !types[path[j]].IsStructural(); j++ {
		size++
	}
	return size
}

// Move returns a copy of path with the block [start, start+size) reinserted
// before the row that was at index insert. insert ranges over 0..len(path).
// An insert point strictly inside the block, or an invalid block, returns an
// unchanged copy.
func Move(path []string, start, size, insert int) []string {
	out := slices.Clone(path)
	if size <= 0 || start < 0 || start+size > len(path) || insert < 0 || insert > len(path) {
		return out
	}
	if insert > start && insert < start+size {
		return out
	}

	block := slices.Clone(path[start : start+size])
	out = slices.Delete(out, start, start+size)
	if start < insert {
		insert -= size
	}
	return slices.Insert(out, insert, block...)
}
