package agents

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/chasm-hq/chasm/pkg/ai"
	"github.com/chasm-hq/chasm/pkg/knowledge"
)

// stubAI implements ai.AgentAIClient with function fields. Methods without a
// configured function fail the calling test via zero values.
type stubAI struct {
	completion     func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error)
	withFormat     func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error
	chat           func(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error)
	embedding      func(ctx context.Context, input []byte) ([]float32, error)
	lastPrompt     string
	lastSystemMsgs []string
}

func (s *stubAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	s.lastPrompt = prompt
	s.recordOptions(opts)
	return s.completion(ctx, prompt, opts...)
}

func (s *stubAI) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	s.lastPrompt = prompt
	s.recordOptions(opts)
	return s.withFormat(ctx, name, description, prompt, out, opts...)
}

func (s *stubAI) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	s.recordOptions(opts)
	return s.chat(ctx, messages, opts...)
}

func (s *stubAI) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return s.embedding(ctx, input)
}

func (s *stubAI) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		vec, err := s.embedding(ctx, input)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubAI) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error { return nil }
func (s *stubAI) ResetMetrics()                                                  {}
func (s *stubAI) GetMetrics() ai.ModelMetrics                                    { return ai.ModelMetrics{} }

func (s *stubAI) recordOptions(opts []ai.GenerateOption) {
	options := ai.GenerateOptions{}
	for _, o := range opts {
		o(&options)
	}
	s.lastSystemMsgs = options.SystemPrompts
}

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		name string
		want knowledge.ComponentCategory
	}{
		{"Battery", knowledge.CategoryElectrical},
		{"battery pack", knowledge.CategoryElectrical},
		{"Main Camera", knowledge.CategoryElectrical},
		{"Gimbal", knowledge.CategoryMechanical},
		{"Landing Gear", knowledge.CategoryMechanical},
		{"Firmware", knowledge.CategoryFirmware},
		{"Mobile App", knowledge.CategoryFirmware},
		{"Packaging", knowledge.CategoryPackaging},
		{"Retail Box", knowledge.CategoryPackaging},
		{"General", knowledge.CategoryUnknown},
		{"", knowledge.CategoryUnknown},
	}

	for _, tc := range tests {
		if got := GuessCategory(tc.name); got != tc.want {
			t.Errorf("GuessCategory(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"Thank you for your time, this was really helpful!", true},
		{"THANK YOU FOR YOUR TIME", true},
		{"That's interesting. What else comes to mind?", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsComplete(tc.reply); got != tc.want {
			t.Errorf("IsComplete(%q) = %v, want %v", tc.reply, got, tc.want)
		}
	}
}

func TestInterviewerStartInterview(t *testing.T) {
	stub := &stubAI{
		completion: func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
			return "  Hi there! Which product do you work on?  ", nil
		},
	}

	a := NewInterviewer(stub)
	greeting, err := a.StartInterview(context.Background(), "Aero X1, Aero X2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if greeting != "Hi there! Which product do you work on?" {
		t.Fatalf("expected trimmed greeting, got %q", greeting)
	}
	if len(stub.lastSystemMsgs) != 1 {
		t.Fatalf("expected one system prompt, got %v", stub.lastSystemMsgs)
	}
	if want := "Aero X1, Aero X2"; !contains(stub.lastSystemMsgs[0], want) {
		t.Fatalf("system prompt should carry product names %q", want)
	}
}

func TestInterviewerNextTurn(t *testing.T) {
	var gotHistory []ai.ChatMessage
	stub := &stubAI{
		chat: func(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
			gotHistory = messages
			return "What improvements would you suggest?", nil
		},
	}

	history := []ai.ChatMessage{
		{Role: "assistant", Message: "Which product do you work on?"},
		{Role: "user", Message: "The Aero X1 gimbal."},
	}

	a := NewInterviewer(stub)
	reply, err := a.NextTurn(context.Background(), history, "Aero X1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "What improvements would you suggest?" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(gotHistory) != 2 {
		t.Fatalf("history should be passed through, got %v", gotHistory)
	}
}

func TestExtractorClampsAndDefaults(t *testing.T) {
	stub := &stubAI{
		withFormat: func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
			raw := `{"insights":[
				{"component_name":"Battery","summary":"drains fast","sentiment":-3.5,"tags":["power"]},
				{"component_name":"","summary":"love the design","sentiment":0.8,"tags":["design"]},
				{"component_name":"Firmware","summary":"rock solid","sentiment":2.0,"tags":["stability"]}
			]}`
			return json.Unmarshal([]byte(raw), out)
		},
	}

	e := NewInsightExtractor(stub)
	insights, err := e.ExtractFromFeedback(context.Background(), "the review text", "Aero X1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}
	if insights[0].Sentiment != -1 {
		t.Errorf("sentiment should clamp to -1, got %g", insights[0].Sentiment)
	}
	if insights[1].ComponentName != "General" {
		t.Errorf("blank component should default to General, got %q", insights[1].ComponentName)
	}
	if insights[2].Sentiment != 1 {
		t.Errorf("sentiment should clamp to 1, got %g", insights[2].Sentiment)
	}
	if insights[0].Category() != string(knowledge.CategoryElectrical) {
		t.Errorf("battery insight should categorize as Electrical, got %s", insights[0].Category())
	}
}

func TestExtractorTranscriptPromptCarriesContext(t *testing.T) {
	stub := &stubAI{
		withFormat: func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
			return json.Unmarshal([]byte(`{"insights":[]}`), out)
		},
	}

	e := NewInsightExtractor(stub)
	if _, err := e.ExtractFromTranscript(context.Background(), "Q: ... A: ...", "Aero X1, Aero X2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !contains(stub.lastPrompt, "Aero X1, Aero X2") {
		t.Fatal("prompt should carry known product names")
	}
	if !contains(stub.lastPrompt, "Q: ... A: ...") {
		t.Fatal("prompt should carry the transcript")
	}
}

func TestScoutFiltersBlankSources(t *testing.T) {
	stub := &stubAI{
		withFormat: func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
			return json.Unmarshal([]byte(`{"sources":["r/drones","  ","r/dji",""]}`), out)
		},
	}

	s := NewSourceScout(stub)
	subs, err := s.IdentifySubreddits(context.Background(), "Aero X1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 2 || subs[0] != "r/drones" || subs[1] != "r/dji" {
		t.Fatalf("unexpected sources: %v", subs)
	}
}

func TestScoutRetriesMalformedOutput(t *testing.T) {
	calls := 0
	stub := &stubAI{
		withFormat: func(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
			calls++
			if calls < 3 {
				return errors.New("malformed model output")
			}
			return json.Unmarshal([]byte(`{"sources":["rtings.com"]}`), out)
		},
	}

	s := NewSourceScout(stub)
	sites, err := s.FindReviewSites(context.Background(), "Aero X1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(sites) != 1 || sites[0] != "rtings.com" {
		t.Fatalf("unexpected sources: %v", sites)
	}
}

func TestPublisherFormatsInsightLines(t *testing.T) {
	stub := &stubAI{
		completion: func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
			return "## Executive Summary\nAll good.", nil
		},
	}

	p := NewBriefingPublisher(stub)
	report, err := p.GenerateBriefing(context.Background(), "Aero X1", []InsightDigest{
		{ComponentName: "Battery", Summary: "drains fast", Sentiment: -0.7, Tags: []string{"power", "thermal"}},
		{Summary: "company-level praise", Sentiment: 0.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report == "" {
		t.Fatal("expected a report")
	}
	if !contains(stub.lastPrompt, "1. [Battery] drains fast (sentiment: -0.7, tags: power, thermal)") {
		t.Fatalf("prompt missing formatted insight line:\n%s", stub.lastPrompt)
	}
	if !contains(stub.lastPrompt, "2. [General] company-level praise") {
		t.Fatalf("blank component should render as General:\n%s", stub.lastPrompt)
	}
}

func TestPublisherEmptyInsights(t *testing.T) {
	stub := &stubAI{
		completion: func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
			return "## Executive Summary\nQuiet week.", nil
		},
	}

	p := NewBriefingPublisher(stub)
	if _, err := p.GenerateBriefing(context.Background(), "Aero X1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !contains(stub.lastPrompt, "(No insights this week)") {
		t.Fatal("prompt should mark an empty week")
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
