package knowledge

import (
	"reflect"
	"testing"
)

func scored(v float64) *float64 {
	return &v
}

func TestComponentSentimentsInternalInsight(t *testing.T) {
	g := Normalize(Payload{
		Nodes: []Node{
			{ID: "p", Type: NodeProduct, Name: "Drone X"},
			{ID: "c", Type: NodeComponent, Name: "Gimbal"},
			{ID: "s", Type: NodeSource, Source: SourceEmployeeInterview},
			{ID: "i", Type: NodeInsight, Sentiment: scored(0.6)},
		},
		Links: []Link{
			{Source: EndpointID("p"), Target: EndpointID("c"), Relation: RelationHasComponent},
			{Source: EndpointID("s"), Target: EndpointID("i"), Relation: RelationYields},
			{Source: EndpointID("i"), Target: EndpointID("c"), Relation: RelationAbout},
		},
	})

	got := g.ComponentSentiments()
	want := []ComponentSentiment{
		{Name: "Gimbal", InternalSentiment: 0.6, ExternalSentiment: 0, InsightCount: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestComponentSentimentsGeneralFallback(t *testing.T) {
	g := Normalize(Payload{
		Nodes: []Node{
			{ID: "i", Type: NodeInsight, Sentiment: scored(-0.3)},
		},
	})

	got := g.ComponentSentiments()
	if len(got) != 1 || got[0].Name != GeneralComponent {
		t.Fatalf("expected a single General record, got %+v", got)
	}
	if got[0].ExternalSentiment != -0.3 || got[0].InternalSentiment != 0 {
		t.Fatalf("insight without origin must land in the external bucket: %+v", got[0])
	}
}

func TestComponentSentimentsBuckets(t *testing.T) {
	g := Normalize(Payload{
		Nodes: []Node{
			{ID: "c", Type: NodeComponent, Name: "Battery"},
			{ID: "emp", Type: NodeSource, Source: SourceEmployeeInterview},
			{ID: "web", Type: NodeSource, Source: SourceReview},
			{ID: "i1", Type: NodeInsight, Sentiment: scored(0.8)},
			{ID: "i2", Type: NodeInsight, Sentiment: scored(0.4)},
			{ID: "i3", Type: NodeInsight, Sentiment: scored(-0.5)},
			{ID: "unscored", Type: NodeInsight},
		},
		Links: []Link{
			{Source: EndpointID("emp"), Target: EndpointID("i1"), Relation: RelationYields},
			{Source: EndpointID("emp"), Target: EndpointID("i2"), Relation: RelationYields},
			{Source: EndpointID("web"), Target: EndpointID("i3"), Relation: RelationYields},
			{Source: EndpointID("i1"), Target: EndpointID("c"), Relation: RelationAbout},
			{Source: EndpointID("i2"), Target: EndpointID("c"), Relation: RelationAbout},
			{Source: EndpointID("i3"), Target: EndpointID("c"), Relation: RelationAbout},
			{Source: EndpointID("unscored"), Target: EndpointID("c"), Relation: RelationAbout},
		},
	})

	got := g.ComponentSentiments()
	want := []ComponentSentiment{
		{Name: "Battery", InternalSentiment: 0.6, ExternalSentiment: -0.5, InsightCount: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestComponentSentimentsLastWriteWins(t *testing.T) {
	g := Normalize(Payload{
		Nodes: []Node{
			{ID: "c1", Type: NodeComponent, Name: "Screen"},
			{ID: "c2", Type: NodeComponent, Name: "Hinge"},
			{ID: "i", Type: NodeInsight, Sentiment: scored(0.2)},
		},
		Links: []Link{
			{Source: EndpointID("i"), Target: EndpointID("c1"), Relation: RelationAbout},
			{Source: EndpointID("i"), Target: EndpointID("c2"), Relation: RelationAbout},
		},
	})

	got := g.ComponentSentiments()
	if len(got) != 1 || got[0].Name != "Hinge" {
		t.Fatalf("expected the later ABOUT link to win, got %+v", got)
	}
}

func TestComponentSentimentsDeterministic(t *testing.T) {
	g := Normalize(Payload{
		Nodes: []Node{
			{ID: "ca", Type: NodeComponent, Name: "Arm"},
			{ID: "cb", Type: NodeComponent, Name: "Motor"},
			{ID: "i1", Type: NodeInsight, Sentiment: scored(0.11)},
			{ID: "i2", Type: NodeInsight, Sentiment: scored(0.37)},
			{ID: "i3", Type: NodeInsight, Sentiment: scored(-0.97)},
		},
		Links: []Link{
			{Source: EndpointID("i1"), Target: EndpointID("ca"), Relation: RelationAbout},
			{Source: EndpointID("i2"), Target: EndpointID("cb"), Relation: RelationAbout},
			{Source: EndpointID("i3"), Target: EndpointID("ca"), Relation: RelationAbout},
		},
	})

	first := g.ComponentSentiments()
	for i := 0; i < 10; i++ {
		if again := g.ComponentSentiments(); !reflect.DeepEqual(first, again) {
			t.Fatalf("aggregation not deterministic:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

func TestComponentSentimentsRounding(t *testing.T) {
	g := Normalize(Payload{
		Nodes: []Node{
			{ID: "i1", Type: NodeInsight, Sentiment: scored(0.333)},
			{ID: "i2", Type: NodeInsight, Sentiment: scored(0.333)},
			{ID: "i3", Type: NodeInsight, Sentiment: scored(0.333)},
		},
	})

	got := g.ComponentSentiments()
	if got[0].ExternalSentiment != 0.33 {
		t.Fatalf("expected mean rounded to 2 decimals, got %v", got[0].ExternalSentiment)
	}
}

func TestQuadrant(t *testing.T) {
	tests := []struct {
		name     string
		internal float64
		external float64
		want     Quadrant
	}{
		{"both positive", 0.5, 0.5, QuadrantAligned},
		{"both zero", 0, 0, QuadrantAligned},
		{"internal positive external negative", 0.5, -0.5, QuadrantBlindSpot},
		{"internal negative external positive", -0.5, 0.5, QuadrantOverEngineered},
		{"both negative", -0.5, -0.5, QuadrantAtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ComponentSentiment{InternalSentiment: tt.internal, ExternalSentiment: tt.external}
			if got := r.Quadrant(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
