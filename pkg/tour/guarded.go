package tour

import (
	"sync"

	"github.com/matzehuels/conceptgraph/pkg/graph"
)

// Guarded serializes access to a Controller for hosts that call it from
// more than one goroutine.
type Guarded struct {
	mu sync.Mutex
	c  *Controller
}

// NewGuarded wraps c.
func NewGuarded(c *Controller) *Guarded {
	return &Guarded{c: c}
}

// Do runs fn with exclusive access to the controller.
func (g *Guarded) Do(fn func(c *Controller) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.c)
}

// Start calls [Controller.Start] under the lock.
func (g *Guarded) Start(gr *graph.Graph) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Start(gr)
}

// Next calls [Controller.Next] under the lock.
func (g *Guarded) Next() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Next()
}

// Prev calls [Controller.Prev] under the lock.
func (g *Guarded) Prev() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Prev()
}

// Jump calls [Controller.Jump] under the lock.
func (g *Guarded) Jump(index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Jump(index)
}

// Stop calls [Controller.Stop] under the lock.
func (g *Guarded) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.Stop()
}

// RemoveNode calls [Controller.RemoveNode] under the lock. Listener
// signals are delivered while the lock is held.
func (g *Guarded) RemoveNode(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.RemoveNode(id)
}

// ReplacePath calls [Controller.ReplacePath] under the lock.
func (g *Guarded) ReplacePath(path []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.c.ReplacePath(path)
}

// Path returns a copy of the current path.
func (g *Guarded) Path() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Path()
}

// Snapshot returns the controller state in one consistent read.
func (g *Guarded) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c.Snapshot()
}
