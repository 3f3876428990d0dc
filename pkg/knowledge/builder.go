package knowledge

// Product is the top-level device being analysed.
type Product struct {
	ID          string
	Name        string
	Description string
	URL         string
}

// Component is a physical sub-system of a Product.
type Component struct {
	ID       string
	Name     string
	Category ComponentCategory
}

// Source is the origin record for a piece of ingested feedback.
type Source struct {
	ID      string
	Type    SourceType
	RawText string
	URL     string
}

// Insight is a single actionable insight extracted from a Source.
type Insight struct {
	ID        string
	Summary   string
	Sentiment float64
	Tags      []string
	Embedding []float32
}

// AddProduct adds a Product node.
func (g *Graph) AddProduct(p Product) {
	n := &Node{ID: p.ID, Name: p.Name, Type: NodeProduct}
	if p.Description != "" {
		n.SetAttr("description", p.Description)
	}
	if p.URL != "" {
		n.SetAttr("url", p.URL)
	}
	g.putNode(n)
}

// AddComponent adds a Component node and links it under its parent Product:
//
//	Product -[HAS_COMPONENT]-> Component
func (g *Graph) AddComponent(c Component, productID string) {
	n := &Node{ID: c.ID, Name: c.Name, Type: NodeComponent}
	if c.Category != "" {
		n.SetAttr("category", c.Category)
	}
	g.putNode(n)
	g.putLink(Link{
		Source:   EndpointID(productID),
		Target:   EndpointID(c.ID),
		Relation: RelationHasComponent,
	})
}

// AddSource adds a Source node.
func (g *Graph) AddSource(s Source) {
	n := &Node{ID: s.ID, Type: NodeSource, Source: s.Type}
	if s.RawText != "" {
		n.SetAttr("raw_text", s.RawText)
	}
	if s.URL != "" {
		n.SetAttr("url", s.URL)
	}
	g.putNode(n)
}

// AddInsight adds an Insight node and wires it between its originating
// Source and the Product or Component it is about:
//
//	Source -[YIELDS]-> Insight -[ABOUT]-> target
func (g *Graph) AddInsight(i Insight, sourceID, targetID string) {
	sentiment := i.Sentiment
	n := &Node{
		ID:        i.ID,
		Type:      NodeInsight,
		Summary:   i.Summary,
		Sentiment: &sentiment,
		Embedding: i.Embedding,
	}
	if len(i.Tags) > 0 {
		n.SetAttr("tags", i.Tags)
	}
	g.putNode(n)
	if sourceID != "" {
		g.putLink(Link{
			Source:   EndpointID(sourceID),
			Target:   EndpointID(i.ID),
			Relation: RelationYields,
		})
	}
	if targetID != "" {
		g.putLink(Link{
			Source:   EndpointID(i.ID),
			Target:   EndpointID(targetID),
			Relation: RelationAbout,
		})
	}
}

// SetEmbedding attaches an embedding vector to an existing node.
func (g *Graph) SetEmbedding(id string, embedding []float32) {
	if n, ok := g.nodes[id]; ok {
		n.Embedding = embedding
	}
}

func (g *Graph) putNode(n *Node) {
	if n.ID == "" {
		return
	}
	if _, seen := g.nodes[n.ID]; !seen {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

func (g *Graph) putLink(l Link) {
	key := l.Key()
	for i, existing := range g.links {
		if existing.Key() == key && existing.Relation == l.Relation {
			g.links[i] = l
			return
		}
	}
	g.links = append(g.links, l)
	g.indexLink(l, len(g.links)-1)
}
