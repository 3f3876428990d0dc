package knowledge

import "sync"

// View owns the graph currently displayed to consumers across reloads. Each
// load is tagged with a generation so a stale in-flight response can never
// replace data from a newer request: applying a superseded generation is a
// no-op.
type View struct {
	mu      sync.RWMutex
	counter uint64
	applied uint64
	graph   *Graph
}

// NewView returns a view holding an empty graph.
func NewView() *View {
	return &View{graph: NewGraph()}
}

// Begin reserves the generation for a new load cycle. Call it before issuing
// the fetch, and pass the returned generation to Apply with the result.
func (v *View) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.counter++
	return v.counter
}

// Apply installs a freshly normalized graph for the given generation.
// Returns false, leaving the view untouched, when a newer generation has
// already been applied.
func (v *View) Apply(gen uint64, g *Graph) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen <= v.applied {
		return false
	}
	v.applied = gen
	v.graph = g
	return true
}

// Graph returns the currently installed graph.
func (v *View) Graph() *Graph {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.graph
}
