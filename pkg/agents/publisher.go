package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chasm-hq/chasm/pkg/ai"
)

// InsightDigest is one insight line fed into the weekly briefing.
type InsightDigest struct {
	ComponentName string
	Summary       string
	Sentiment     float64
	Tags          []string
}

// BriefingPublisher generates executive-level weekly briefings from recent
// graph insights.
type BriefingPublisher struct {
	client ai.AgentAIClient
}

// NewBriefingPublisher creates a publisher backed by the given AI client.
func NewBriefingPublisher(client ai.AgentAIClient) *BriefingPublisher {
	return &BriefingPublisher{client: client}
}

// GenerateBriefing writes a Monday Morning Briefing in markdown for the
// given product from this week's insights.
func (p *BriefingPublisher) GenerateBriefing(ctx context.Context, productName string, insights []InsightDigest) (string, error) {
	var lines []string
	for i, ins := range insights {
		component := ins.ComponentName
		if component == "" {
			component = "General"
		}
		lines = append(lines, fmt.Sprintf(
			"%d. [%s] %s (sentiment: %g, tags: %s)",
			i+1, component, ins.Summary, ins.Sentiment, strings.Join(ins.Tags, ", "),
		))
	}

	insightsText := "(No insights this week)"
	if len(lines) > 0 {
		insightsText = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(briefingPrompt, productName, insightsText)

	report, err := p.client.GenerateCompletion(ctx, prompt, ai.WithTemperature(0.4))
	if err != nil {
		return "", fmt.Errorf("briefing generation failed: %w", err)
	}
	if strings.TrimSpace(report) == "" {
		return "", fmt.Errorf("empty briefing from model")
	}
	return report, nil
}

// ReportName returns the dated object name a briefing is stored under.
func ReportName(now time.Time) string {
	return fmt.Sprintf("weekly_briefing_%s.md", now.Format("2006-01-02"))
}
