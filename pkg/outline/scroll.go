package outline

import "math"

// AutoScroll returns the scroll delta for one pointer-move event while
// dragging over a list whose visible area spans [top, bottom). Within
// threshold of the top edge the delta is negative, near the bottom edge it
// is positive, and its magnitude grows toward maxStep as the pointer nears
// the edge. Outside both zones it is 0.
func AutoScroll(pointerY, top, bottom, threshold, maxStep float64) int {
	if threshold <= 0 || maxStep <= 0 || bottom <= top {
		return 0
	}
	if d := pointerY - top; d < threshold {
		return -step(d, threshold, maxStep)
	}
	if d := bottom - pointerY; d < threshold {
		return step(d, threshold, maxStep)
	}
	return 0
}

func step(dist, threshold, maxStep float64) int {
	closeness := 1 - math.Max(dist, 0)/threshold
	return int(math.Ceil(closeness * maxStep))
}

// Scroller applies AutoScroll to a scroll offset bounded by [0, Max].
type Scroller struct {
	Threshold float64
	MaxStep   float64
	Offset    int
	Max       int
	active    bool
}

// Nudge applies at most one adjustment for a pointer-move event and returns
// the new offset.
func (s *Scroller) Nudge(pointerY, top, bottom float64) int {
	s.active = true
	s.Offset += AutoScroll(pointerY, top, bottom, s.Threshold, s.MaxStep)
	s.Offset = min(max(s.Offset, 0), max(s.Max, 0))
	return s.Offset
}

// Stop ends auto-scrolling when the drag ends. Further Nudge calls start a
// new scroll session.
func (s *Scroller) Stop() { s.active = false }

// Active reports whether a drag is currently scrolling the list.
func (s *Scroller) Active() bool { return s.active }
