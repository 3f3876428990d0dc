package knowledge

// Graph is the canonical, ID-keyed form of a node-link payload. It keeps an
// incident-link index so neighbor lookups run in time proportional to a
// node's degree instead of the total link count.
//
// A Graph owns its data for the duration of one load cycle. Derived
// structures (highlight sets, sentiment records) are recomputed from it,
// never mutated in place.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	links    []Link
	incident map[string][]int
}

// Normalize canonicalizes a raw payload. It is a pure transform and total
// over its input: links whose endpoints cannot be resolved to an id are kept
// in the link list but left out of the incident index, and duplicate node
// ids resolve last-write-wins. Normalizing an exported graph reproduces it.
func Normalize(p Payload) *Graph {
	g := &Graph{
		nodes:    make(map[string]*Node, len(p.Nodes)),
		order:    make([]string, 0, len(p.Nodes)),
		links:    make([]Link, len(p.Links)),
		incident: make(map[string][]int),
	}

	for i := range p.Nodes {
		n := p.Nodes[i]
		if n.ID == "" {
			continue
		}
		if _, seen := g.nodes[n.ID]; !seen {
			g.order = append(g.order, n.ID)
		}
		g.nodes[n.ID] = &n
	}

	copy(g.links, p.Links)
	for i, l := range g.links {
		g.indexLink(l, i)
	}

	return g
}

// NewGraph returns an empty canonical graph ready for the Add* mutators.
func NewGraph() *Graph {
	return Normalize(Payload{})
}

func (g *Graph) indexLink(l Link, idx int) {
	if l.Source.ID != "" {
		g.incident[l.Source.ID] = append(g.incident[l.Source.ID], idx)
	}
	if l.Target.ID != "" && l.Target.ID != l.Source.ID {
		g.incident[l.Target.ID] = append(g.incident[l.Target.ID], idx)
	}
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in first-seen order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesOfType returns all nodes with the given type tag, in first-seen order.
func (g *Graph) NodesOfType(t NodeType) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Links returns the link list in payload order.
func (g *Graph) Links() []Link {
	return g.links
}

// Incident returns the links touching the given node id, in payload order.
func (g *Graph) Incident(id string) []Link {
	idxs := g.incident[id]
	out := make([]Link, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, g.links[i])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int {
	return len(g.links)
}

// Payload exports the graph back to its wire shape. Endpoints are always
// emitted as bare id strings, so exporting and re-normalizing is a no-op.
func (g *Graph) Payload() Payload {
	p := Payload{
		Nodes: make([]Node, 0, len(g.order)),
		Links: make([]Link, len(g.links)),
	}
	for _, id := range g.order {
		p.Nodes = append(p.Nodes, *g.nodes[id])
	}
	copy(p.Links, g.links)
	return p
}
