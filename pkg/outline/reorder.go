package outline

import (
	"github.com/matzehuels/conceptgraph/pkg/graph"
)

// PathWriter is the owner of the tour path. *tour.Controller and
// *tour.Guarded satisfy it.
type PathWriter interface {
	Path() []string
	ReplacePath(path []string)
}

// Drag describes the gesture in progress.
type Drag struct {
	Start  int // first row of the dragged block
	Size   int // rows in the block
	Insert int // insertion index, valid when HasTarget
	// HasTarget is false until the pointer is over a row outside the block.
	HasTarget bool
}

// Contains reports whether row i belongs to the dragged block.
func (d Drag) Contains(i int) bool { return i >= d.Start && i < d.Start+d.Size }

// Reorderer turns drag gestures over outline rows into block moves.
// It is meant for a single UI event loop.
type Reorderer struct {
	target PathWriter
	types  map[string]graph.NodeType
	drag   *Drag
}

// NewReorderer returns a Reorderer writing to target. types classifies the
// ids in the path; ids missing from it are treated as content.
func NewReorderer(target PathWriter, types map[string]graph.NodeType) *Reorderer {
	return &Reorderer{target: target, types: types}
}

// SetTypes replaces the id to type lookup, e.g. after the graph changed.
func (r *Reorderer) SetTypes(types map[string]graph.NodeType) { r.types = types }

// DragStart begins dragging the block at row i. It reports false for an
// out-of-range row.
func (r *Reorderer) DragStart(i int) bool {
	size := BlockSize(r.target.Path(), r.types, i)
	if size == 0 {
		r.drag = nil
		return false
	}
	r.drag = &Drag{Start: i, Size: size}
	return true
}

// DragOver updates the insertion point for a pointer at pointerY over row j,
// whose box spans [rowTop, rowTop+rowHeight). The upper half inserts before
// j, the lower half after it. Rows inside the dragged block give no target.
func (r *Reorderer) DragOver(j int, pointerY, rowTop, rowHeight float64) (int, bool) {
	if r.drag == nil {
		return 0, false
	}
	if j < 0 || j >= len(r.target.Path()) || r.drag.Contains(j) {
		r.drag.HasTarget = false
		return 0, false
	}
	insert := j
	if pointerY >= rowTop+rowHeight/2 {
		insert = j + 1
	}
	r.drag.Insert = insert
	r.drag.HasTarget = true
	return insert, true
}

// Drop completes the gesture. When the target moves the block, the new path
// is written to the target and returned. Otherwise, with no target or an
// insertion point at either edge of the block, the gesture is abandoned,
// the target is not written and ok is false.
func (r *Reorderer) Drop() (path []string, ok bool) {
	d := r.drag
	r.drag = nil
	if d == nil || !d.HasTarget || d.Insert == d.Start || d.Insert == d.Start+d.Size {
		return nil, false
	}
	path = Move(r.target.Path(), d.Start, d.Size, d.Insert)
	r.target.ReplacePath(path)
	return path, true
}

// Cancel abandons the gesture without changing the path.
func (r *Reorderer) Cancel() { r.drag = nil }

// Dragging returns the gesture in progress.
func (r *Reorderer) Dragging() (Drag, bool) {
	if r.drag == nil {
		return Drag{}, false
	}
	return *r.drag, true
}
