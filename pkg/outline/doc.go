// Package outline implements block-aware reordering of a tour path.
//
// The outline shows the path as a flat list indented by node type ([Indent]).
// Dragging a ROOT or CATEGORY row moves its whole block: the structural row
// plus the run of content rows that follow it up to the next structural row
// ([BlockSize]). Content rows move alone. A block can never be dropped inside
// itself.
//
// [Reorderer] tracks one drag gesture and writes the result back through a
// [PathWriter], normally a *tour.Controller, whose ReplacePath keeps the
// cursor on the same node id. [Scroller] nudges the list while the pointer
// sits near its top or bottom edge.
package outline
