package knowledge

// HighlightSet identifies the nodes and links a renderer should draw at full
// emphasis while everything else is dimmed. An empty set means "no filter":
// render everything at full emphasis. How emphasis is drawn (opacity, color)
// is the renderer's concern, not ours.
type HighlightSet struct {
	Nodes map[string]struct{}
	Links map[string]struct{}
}

// None reports whether no filter is active.
func (h HighlightSet) None() bool {
	return len(h.Nodes) == 0 && len(h.Links) == 0
}

// Highlight computes the induced highlight set for a focal node: the focal
// id itself, the id of every node one link away (incoming or outgoing), and
// the canonical key of every link touching the focal node.
//
// Pure and stateless: the result depends only on the graph and the focal id,
// so repeated or interleaved calls cannot observe each other.
func (g *Graph) Highlight(focalID string) HighlightSet {
	h := HighlightSet{
		Nodes: map[string]struct{}{focalID: {}},
		Links: map[string]struct{}{},
	}

	for _, l := range g.Incident(focalID) {
		h.Links[l.Key()] = struct{}{}
		if l.Source.ID != "" {
			h.Nodes[l.Source.ID] = struct{}{}
		}
		if l.Target.ID != "" {
			h.Nodes[l.Target.ID] = struct{}{}
		}
	}

	return h
}

// ClearHighlight returns the empty set, i.e. no filter.
func ClearHighlight() HighlightSet {
	return HighlightSet{
		Nodes: map[string]struct{}{},
		Links: map[string]struct{}{},
	}
}
