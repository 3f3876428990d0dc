package research

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chasm-hq/chasm/pkg/agents"
	"github.com/chasm-hq/chasm/pkg/ai"
	"github.com/chasm-hq/chasm/pkg/interview"
	"github.com/chasm-hq/chasm/pkg/knowledge"
)

type stubAI struct {
	completion func(prompt string) (string, error)
	withFormat func(name, prompt string, out any) error
	embedding  func(input []byte) ([]float32, error)
}

func (s *stubAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	if s.completion == nil {
		return "", errors.New("no completion stub")
	}
	return s.completion(prompt)
}

func (s *stubAI) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	if s.withFormat == nil {
		return errors.New("no format stub")
	}
	return s.withFormat(name, prompt, out)
}

func (s *stubAI) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubAI) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if s.embedding == nil {
		return []float32{1, 0}, nil
	}
	return s.embedding(input)
}

func (s *stubAI) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		emb, err := s.GenerateEmbedding(ctx, in)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (s *stubAI) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error { return nil }
func (s *stubAI) ResetMetrics()                                                  {}
func (s *stubAI) GetMetrics() ai.ModelMetrics                                    { return ai.ModelMetrics{} }

type memoryGraphStore struct {
	payload knowledge.Payload
	saved   *knowledge.Graph
}

func (m *memoryGraphStore) LoadGraph(ctx context.Context) (knowledge.Payload, error) {
	return m.payload, nil
}

func (m *memoryGraphStore) SaveGraph(ctx context.Context, g *knowledge.Graph) error {
	m.saved = g
	return nil
}

func (m *memoryGraphStore) ListProducts(ctx context.Context) ([]knowledge.Product, error) {
	return nil, nil
}

func (m *memoryGraphStore) FindSimilarInsights(ctx context.Context, embedding []float32, topK int32, minSimilarity float64) ([]string, error) {
	return nil, nil
}

func msg(role, content string) interview.Message {
	return interview.Message{Role: role, Content: content, Timestamp: time.Now()}
}

func TestBuildTranscriptPairsQuestionsWithAnswers(t *testing.T) {
	messages := []interview.Message{
		msg(interview.RoleAssistant, "Welcome! What do you work on?"),
		msg(interview.RoleUser, "Mostly the battery pack."),
		msg(interview.RoleAssistant, "How does it hold up?"),
		msg(interview.RoleUser, "It overheats."),
	}

	got := BuildTranscript(messages)
	want := "Q: Welcome! What do you work on?\nA: Mostly the battery pack.\n\nQ: How does it hold up?\nA: It overheats."
	if got != want {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}

func TestBuildTranscriptGreetingOnly(t *testing.T) {
	messages := []interview.Message{
		msg(interview.RoleAssistant, "Welcome!"),
	}
	if got := BuildTranscript(messages); got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}

func TestInjectInsightsWiresTriple(t *testing.T) {
	g := knowledge.NewGraph()
	g.AddProduct(knowledge.Product{ID: "prod-1", Name: "Drone X"})

	added := injectInsights(g, []agents.ExtractedInsight{
		{ComponentName: "Battery", Summary: "Overheats under load", Sentiment: -0.8, Tags: []string{"thermal"}},
	}, injectParams{
		productID:  "prod-1",
		sourceType: knowledge.SourceReview,
		sourceURL:  "https://example.com/review",
	})
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	var (
		compID   string
		insID    string
		sourceID string
	)
	for _, n := range g.Nodes() {
		switch n.Type {
		case knowledge.NodeComponent:
			compID = n.ID
			if n.Name != "Battery" {
				t.Errorf("component name = %q", n.Name)
			}
			if got := n.AttrString("category"); got != string(knowledge.CategoryElectrical) {
				t.Errorf("category = %q, want Electrical", got)
			}
		case knowledge.NodeInsight:
			insID = n.ID
			if n.Sentiment == nil || *n.Sentiment != -0.8 {
				t.Errorf("sentiment = %v, want -0.8", n.Sentiment)
			}
		case knowledge.NodeSource:
			sourceID = n.ID
			if n.Source != knowledge.SourceReview {
				t.Errorf("source type = %q", n.Source)
			}
		}
	}
	if !strings.HasPrefix(compID, "comp-") || !strings.HasPrefix(insID, "ins-") {
		t.Fatalf("ids = %q, %q", compID, insID)
	}
	if sourceID != "src-"+insID {
		t.Errorf("source id = %q, want %q", sourceID, "src-"+insID)
	}

	wantLinks := map[string]knowledge.Relation{
		"prod-1->" + compID:      knowledge.RelationHasComponent,
		sourceID + "->" + insID:  knowledge.RelationYields,
		insID + "->" + compID:    knowledge.RelationAbout,
	}
	for _, l := range g.Links() {
		if rel, ok := wantLinks[l.Key()]; ok && rel == l.Relation {
			delete(wantLinks, l.Key())
		}
	}
	if len(wantLinks) != 0 {
		t.Errorf("missing links: %v", wantLinks)
	}
}

func TestMatchProduct(t *testing.T) {
	g := knowledge.NewGraph()
	g.AddProduct(knowledge.Product{ID: "prod-1", Name: "Drone X"})
	g.AddProduct(knowledge.Product{ID: "prod-2", Name: "Gimbal Pro"})
	products := g.NodesOfType(knowledge.NodeProduct)

	if got := matchProduct(products, "the gimbal pro has issues"); got != "prod-2" {
		t.Errorf("matched %q, want prod-2", got)
	}
	if got := matchProduct(products, "something unrelated"); got != "prod-1" {
		t.Errorf("fallback = %q, want prod-1", got)
	}
}

func TestIngestInterviewInjectsAndLinks(t *testing.T) {
	graphStore := &memoryGraphStore{}
	seed := knowledge.NewGraph()
	seed.AddProduct(knowledge.Product{ID: "prod-1", Name: "Drone X"})
	graphStore.payload = seed.Payload()

	client := &stubAI{
		withFormat: func(name, prompt string, out any) error {
			payload := `{"insights": [{"product_name": "Drone X", "component_name": "Motor", "summary": "Motors stall at altitude", "sentiment": -0.6, "tags": ["reliability"]}]}`
			return json.Unmarshal([]byte(payload), out)
		},
	}

	p := NewPipeline(PipelineParams{AIClient: client, Graphs: graphStore})

	session := interview.Session{
		ID:     "sess-1",
		Status: interview.StatusCompleted,
		Messages: []interview.Message{
			msg(interview.RoleAssistant, "What do you work on?"),
			msg(interview.RoleUser, "The motors on Drone X."),
		},
	}

	injected, err := p.IngestInterview(context.Background(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if injected != 1 {
		t.Fatalf("injected = %d, want 1", injected)
	}
	if graphStore.saved == nil {
		t.Fatal("graph was not saved")
	}

	var foundSource bool
	for _, n := range graphStore.saved.Nodes() {
		if n.Type != knowledge.NodeSource {
			continue
		}
		foundSource = true
		if !strings.HasPrefix(n.ID, "src-interview-") {
			t.Errorf("source id = %q, want src-interview- prefix", n.ID)
		}
		if got := n.AttrString("url"); got != "interview://sess-1" {
			t.Errorf("source url = %q", got)
		}
		if n.Source != knowledge.SourceEmployeeInterview {
			t.Errorf("source type = %q", n.Source)
		}
	}
	if !foundSource {
		t.Fatal("no source node injected")
	}

	for _, n := range graphStore.saved.NodesOfType(knowledge.NodeInsight) {
		if len(n.Embedding) == 0 {
			t.Errorf("insight %s missing embedding", n.ID)
		}
	}
}

func TestIngestInterviewEmptyTranscript(t *testing.T) {
	p := NewPipeline(PipelineParams{AIClient: &stubAI{}, Graphs: &memoryGraphStore{}})
	injected, err := p.IngestInterview(context.Background(), interview.Session{
		ID:       "sess-2",
		Messages: []interview.Message{msg(interview.RoleAssistant, "Welcome!")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if injected != 0 {
		t.Errorf("injected = %d, want 0", injected)
	}
}

func TestCollectDigests(t *testing.T) {
	g := knowledge.NewGraph()
	g.AddProduct(knowledge.Product{ID: "prod-1", Name: "Drone X"})
	g.AddComponent(knowledge.Component{ID: "comp-1", Name: "Battery"}, "prod-1")
	g.AddSource(knowledge.Source{ID: "src-1", Type: knowledge.SourceReview})
	g.AddInsight(knowledge.Insight{
		ID: "ins-1", Summary: "Drains fast", Sentiment: -0.5, Tags: []string{"battery-life"},
	}, "src-1", "comp-1")
	g.AddInsight(knowledge.Insight{
		ID: "ins-2", Summary: "Great value", Sentiment: 0.9,
	}, "", "prod-1")

	digests := collectDigests(g, "prod-1")
	if len(digests) != 2 {
		t.Fatalf("digests = %d, want 2", len(digests))
	}

	byComponent := map[string]agents.InsightDigest{}
	for _, d := range digests {
		byComponent[d.ComponentName] = d
	}

	battery, ok := byComponent["Battery"]
	if !ok {
		t.Fatal("missing Battery digest")
	}
	if battery.Summary != "Drains fast" || battery.Sentiment != -0.5 {
		t.Errorf("battery digest = %+v", battery)
	}
	if len(battery.Tags) != 1 || battery.Tags[0] != "battery-life" {
		t.Errorf("battery tags = %v", battery.Tags)
	}

	general, ok := byComponent[knowledge.GeneralComponent]
	if !ok {
		t.Fatal("missing General digest")
	}
	if general.Summary != "Great value" {
		t.Errorf("general digest = %+v", general)
	}
}

func TestSourceTypeForURL(t *testing.T) {
	if got := sourceTypeForURL("https://www.reddit.com/r/drones/"); got != knowledge.SourceReddit {
		t.Errorf("got %q, want Reddit", got)
	}
	if got := sourceTypeForURL("https://techreview.example.com"); got != knowledge.SourceReview {
		t.Errorf("got %q, want Review", got)
	}
}
