package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/chasm-hq/chasm/pkg/ai"

	"github.com/pkoukk/tiktoken-go"
)

const (
	transcriptTokenCap = 20000
	feedbackTokenCap   = 15000
)

// ExtractedInsight is one structured insight produced by the extractor.
type ExtractedInsight struct {
	ProductName   string   `json:"product_name,omitempty"`
	ComponentName string   `json:"component_name"`
	Summary       string   `json:"summary"`
	Sentiment     float64  `json:"sentiment"`
	Tags          []string `json:"tags"`
}

// Category returns the component category guessed from the component name.
func (i ExtractedInsight) Category() string {
	return string(GuessCategory(i.ComponentName))
}

type extractedInsights struct {
	Insights []ExtractedInsight `json:"insights"`
}

// InsightExtractor turns free text into structured insights.
type InsightExtractor struct {
	client ai.AgentAIClient
}

// NewInsightExtractor creates an extractor backed by the given AI client.
func NewInsightExtractor(client ai.AgentAIClient) *InsightExtractor {
	return &InsightExtractor{client: client}
}

// ExtractFromTranscript processes a completed interview transcript and
// returns the insights it contains. Sentiment scores are clamped to
// [-1, 1]; a missing component name falls back to "General".
func (e *InsightExtractor) ExtractFromTranscript(ctx context.Context, transcript string, productNames string) ([]ExtractedInsight, error) {
	prompt := fmt.Sprintf(transcriptExtractionPrompt, productNames, capTokens(transcript, transcriptTokenCap))
	return e.extract(ctx, prompt)
}

// ExtractFromFeedback processes scraped feedback text about a single product
// and returns the insights it contains.
func (e *InsightExtractor) ExtractFromFeedback(ctx context.Context, text string, productName string) ([]ExtractedInsight, error) {
	prompt := fmt.Sprintf(feedbackExtractionPrompt, productName, capTokens(text, feedbackTokenCap))
	return e.extract(ctx, prompt)
}

func (e *InsightExtractor) extract(ctx context.Context, prompt string) ([]ExtractedInsight, error) {
	var out extractedInsights
	err := e.client.GenerateCompletionWithFormat(ctx,
		"insights",
		"Actionable hardware product insights extracted from feedback text",
		prompt,
		&out,
	)
	if err != nil {
		return nil, fmt.Errorf("insight extraction failed: %w", err)
	}

	insights := out.Insights
	for i := range insights {
		insights[i].Sentiment = clampSentiment(insights[i].Sentiment)
		if strings.TrimSpace(insights[i].ComponentName) == "" {
			insights[i].ComponentName = "General"
		}
	}
	return insights, nil
}

func clampSentiment(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// capTokens truncates text so its o200k_base token count stays within max.
func capTokens(text string, max int) string {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		if len(text) > max*4 {
			return text[:max*4]
		}
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= max {
		return text
	}
	return enc.Decode(tokens[:max])
}
