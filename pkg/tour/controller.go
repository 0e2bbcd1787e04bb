package tour

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/conceptgraph/pkg/graph"
)

var (
	// ErrIndexOutOfRange is returned by [Controller.Jump] for an index
	// outside the path. The controller state is left unchanged.
	ErrIndexOutOfRange = errors.New("tour index out of range")

	// ErrInactive is returned by operations that need an active tour.
	ErrInactive = errors.New("tour is not active")
)

// Listener receives the controller's signals to the presentation layer.
type Listener interface {
	// FocusNode asks the view to bring id into view.
	FocusNode(id string)
	// CloseDetail asks the view to close its detail panel.
	CloseDetail()
	// ResetCamera asks the view to return to its overview.
	ResetCamera()
	// PathChanged reports a new path order so it can be persisted.
	PathChanged(path []string)
}

// NoopListener ignores every signal.
type NoopListener struct{}

func (NoopListener) FocusNode(string)     {}
func (NoopListener) CloseDetail()         {}
func (NoopListener) ResetCamera()         {}
func (NoopListener) PathChanged([]string) {}

// ListenerFuncs adapts optional callbacks to a Listener. Nil fields are
// skipped.
type ListenerFuncs struct {
	OnFocus       func(id string)
	OnCloseDetail func()
	OnResetCamera func()
	OnPathChanged func(path []string)
}

func (f ListenerFuncs) FocusNode(id string) {
	if f.OnFocus != nil {
		f.OnFocus(id)
	}
}

func (f ListenerFuncs) CloseDetail() {
	if f.OnCloseDetail != nil {
		f.OnCloseDetail()
	}
}

func (f ListenerFuncs) ResetCamera() {
	if f.OnResetCamera != nil {
		f.OnResetCamera()
	}
}

func (f ListenerFuncs) PathChanged(path []string) {
	if f.OnPathChanged != nil {
		f.OnPathChanged(path)
	}
}

// Controller is the tour state machine. It is inactive until started; while
// active, 0 <= cursor < len(path).
//
// Controller is not safe for concurrent use; see [Guarded].
type Controller struct {
	builder  *Builder
	listener Listener

	path   []string
	cursor int
	active bool
}

// NewController returns an inactive controller. A nil builder uses
// NewBuilder(); a nil listener ignores signals.
func NewController(b *Builder, l Listener) *Controller {
	if b == nil {
		b = NewBuilder()
	}
	if l == nil {
		l = NoopListener{}
	}
	return &Controller{builder: b, listener: l}
}

// SetListener replaces the listener.
func (c *Controller) SetListener(l Listener) {
	if l == nil {
		l = NoopListener{}
	}
	c.listener = l
}

// Start builds the path for g and activates the tour at index 0. It returns
// false, leaving the controller untouched, when there is nothing to tour.
func (c *Controller) Start(g *graph.Graph) bool {
	if g == nil || len(g.Nodes) == 0 {
		return false
	}
	return c.StartPath(c.builder.Build(g))
}

// StartPath activates the tour on a precomputed path, for example one
// returned by [Builder.Path] or restored from storage.
func (c *Controller) StartPath(path []string) bool {
	if len(path) == 0 {
		return false
	}
	c.path = slices.Clone(path)
	c.cursor = 0
	c.active = true
	c.listener.FocusNode(c.path[0])
	return true
}

// Next advances the cursor. At the last index it stops the tour instead.
// It reports whether the tour is still active.
func (c *Controller) Next() bool {
	if !c.active {
		return false
	}
	if c.cursor < len(c.path)-1 {
		c.cursor++
		c.listener.FocusNode(c.path[c.cursor])
		return true
	}
	c.Stop()
	return false
}

// Prev moves the cursor back. It is a no-op at index 0 or when inactive and
// reports whether the cursor moved.
func (c *Controller) Prev() bool {
	if !c.active || c.cursor == 0 {
		return false
	}
	c.cursor--
	c.listener.FocusNode(c.path[c.cursor])
	return true
}

// Jump moves the cursor to index. An index outside the path is rejected
// with ErrIndexOutOfRange. Jumping while inactive activates the tour on the
// current path.
func (c *Controller) Jump(index int) error {
	if index < 0 || index >= len(c.path) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(c.path))
	}
	c.cursor = index
	c.active = true
	c.listener.FocusNode(c.path[index])
	return nil
}

// Stop deactivates the tour. The path is kept so the outline can still be
// shown and edited.
func (c *Controller) Stop() {
	c.active = false
	c.cursor = 0
	c.listener.CloseDetail()
	c.listener.ResetCamera()
}

// RemoveNode repairs the path after id was deleted from the graph. The id is
// spliced out; a cursor left past the end is clamped to the last index, and
// an emptied path stops the tour. It reports whether id was in the path.
func (c *Controller) RemoveNode(id string) bool {
	i := slices.Index(c.path, id)
	if i < 0 {
		return false
	}
	wasCurrent := c.active && i == c.cursor
	c.path = slices.Delete(c.path, i, i+1)

	if c.active {
		switch {
		case len(c.path) == 0:
			c.Stop()
		case c.cursor >= len(c.path):
			c.cursor = len(c.path) - 1
			c.listener.FocusNode(c.path[c.cursor])
		case wasCurrent:
			c.listener.FocusNode(c.path[c.cursor])
		}
	}
	c.listener.PathChanged(c.Path())
	return true
}

// ReplacePath installs a reordered path. While active, the cursor follows
// the id it pointed at; if that id is gone the cursor is clamped.
func (c *Controller) ReplacePath(path []string) {
	var current string
	if c.active {
		current = c.path[c.cursor]
	}
	c.path = slices.Clone(path)

	if c.active {
		if i := slices.Index(c.path, current); i >= 0 {
			c.cursor = i
		} else if len(c.path) == 0 {
			c.Stop()
		} else if c.cursor >= len(c.path) {
			c.cursor = len(c.path) - 1
		}
	}
	c.listener.PathChanged(c.Path())
}

// Path returns a copy of the current path.
func (c *Controller) Path() []string { return slices.Clone(c.path) }

// Len returns the path length.
func (c *Controller) Len() int { return len(c.path) }

// Active reports whether the tour is running.
func (c *Controller) Active() bool { return c.active }

// Cursor returns the cursor and whether the tour is active.
func (c *Controller) Cursor() (int, bool) {
	if !c.active {
		return -1, false
	}
	return c.cursor, true
}

// Current returns the id under the cursor.
func (c *Controller) Current() (string, bool) {
	if !c.active {
		return "", false
	}
	return c.path[c.cursor], true
}

// Snapshot is a read-only copy of controller state.
type Snapshot struct {
	Path   []string `json:"path"`
	Cursor int      `json:"cursor"`
	Active bool     `json:"active"`
}

// Snapshot returns the current state. Cursor is -1 when inactive.
func (c *Controller) Snapshot() Snapshot {
	cur, _ := c.Cursor()
	return Snapshot{Path: c.Path(), Cursor: cur, Active: c.active}
}
