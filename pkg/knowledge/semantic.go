package knowledge

import "math"

// DefaultSimilarityThreshold is the minimum cosine similarity for two
// insights to be considered semantically matched.
const DefaultSimilarityThreshold = 0.75

// LinkSemanticMatches computes pairwise cosine similarity across Insight
// nodes that carry embeddings and adds a SEMANTIC_MATCH link, weighted by
// the similarity score rounded to 4 decimals, for every pair at or above
// threshold. Pairs already linked are skipped. Returns the number of links
// added.
func (g *Graph) LinkSemanticMatches(threshold float64) int {
	var ids []string
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Type == NodeInsight && len(n.Embedding) > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return 0
	}

	existing := make(map[string]struct{})
	for _, l := range g.links {
		if l.Relation == RelationSemanticMatch {
			existing[l.Key()] = struct{}{}
		}
	}

	added := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			score := Cosine(g.nodes[ids[i]].Embedding, g.nodes[ids[j]].Embedding)
			if score < threshold {
				continue
			}
			l := Link{
				Source:   EndpointID(ids[i]),
				Target:   EndpointID(ids[j]),
				Relation: RelationSemanticMatch,
				Weight:   math.Round(score*10000) / 10000,
			}
			if _, dup := existing[l.Key()]; dup {
				continue
			}
			reversed := l.Target.ID + "->" + l.Source.ID
			if _, dup := existing[reversed]; dup {
				continue
			}
			g.putLink(l)
			existing[l.Key()] = struct{}{}
			added++
		}
	}
	return added
}

// Cosine returns the cosine similarity of two vectors, or 0 when either is
// empty or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
