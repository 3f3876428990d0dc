package knowledge

import "math"

// GeneralComponent is the fallback bucket for insights whose target cannot
// be resolved to a named component.
const GeneralComponent = "General"

// ComponentSentiment is the derived internal-vs-external comparison record
// for one component. Field names follow the wire shape consumed by the
// dashboard.
type ComponentSentiment struct {
	Name              string  `json:"name"`
	InternalSentiment float64 `json:"internalSentiment"`
	ExternalSentiment float64 `json:"externalSentiment"`
	InsightCount      int     `json:"insightCount"`
}

// Quadrant is the sign-based classification of a sentiment record.
type Quadrant string

const (
	QuadrantAligned        Quadrant = "aligned"
	QuadrantBlindSpot      Quadrant = "blind_spot"
	QuadrantOverEngineered Quadrant = "over_engineered"
	QuadrantAtRisk         Quadrant = "at_risk"
)

// Quadrant classifies the record by the signs of its two means. Zero counts
// as non-negative, so a component with no insights on one side lands in the
// friendlier half.
func (r ComponentSentiment) Quadrant() Quadrant {
	internalOK := r.InternalSentiment >= 0
	externalOK := r.ExternalSentiment >= 0
	switch {
	case internalOK && externalOK:
		return QuadrantAligned
	case internalOK && !externalOK:
		return QuadrantBlindSpot
	case !internalOK && externalOK:
		return QuadrantOverEngineered
	default:
		return QuadrantAtRisk
	}
}

// ComponentSentiments folds every scored Insight node into per-component
// internal/external buckets and returns one record per component observed.
//
// Origin resolution: for each YIELDS link the source node's origin channel
// is recorded against the target insight; Employee_Interview origins land in
// the internal bucket, everything else (including unresolved origins) in the
// external one. Target resolution: for each ABOUT link the target node's
// display name is recorded against the source insight; insights without a
// usable target fall back to the "General" component. When several YIELDS or
// ABOUT links name the same insight, the later one in payload order wins.
//
// The fold is total: unscored insights, dangling links and empty buckets
// degrade to omission or zero, never to an error. Records come back in
// first-observed order, and re-running on an unchanged graph is
// bit-identical.
func (g *Graph) ComponentSentiments() []ComponentSentiment {
	origin := make(map[string]SourceType)
	target := make(map[string]string)

	for _, l := range g.links {
		switch l.Relation {
		case RelationYields:
			if src, ok := g.nodes[l.Source.ID]; ok {
				origin[l.Target.ID] = src.Source
			}
		case RelationAbout:
			if tgt, ok := g.nodes[l.Target.ID]; ok && tgt.Name != "" {
				target[l.Source.ID] = tgt.Name
			}
		}
	}

	type bucket struct {
		internal []float64
		external []float64
	}
	buckets := make(map[string]*bucket)
	var names []string

	for _, id := range g.order {
		n := g.nodes[id]
		if n.Type != NodeInsight || n.Sentiment == nil {
			continue
		}

		name := target[id]
		if name == "" {
			name = GeneralComponent
		}

		b := buckets[name]
		if b == nil {
			b = &bucket{}
			buckets[name] = b
			names = append(names, name)
		}

		if origin[id] == SourceEmployeeInterview {
			b.internal = append(b.internal, *n.Sentiment)
		} else {
			b.external = append(b.external, *n.Sentiment)
		}
	}

	records := make([]ComponentSentiment, 0, len(names))
	for _, name := range names {
		b := buckets[name]
		records = append(records, ComponentSentiment{
			Name:              name,
			InternalSentiment: roundedMean(b.internal),
			ExternalSentiment: roundedMean(b.external),
			InsightCount:      len(b.internal) + len(b.external),
		})
	}
	return records
}

// roundedMean averages a bucket to 2 decimal places, defaulting empty
// buckets to 0.
func roundedMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return math.Round(sum/float64(len(values))*100) / 100
}
