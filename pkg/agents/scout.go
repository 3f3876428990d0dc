package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/chasm-hq/chasm/internal/util"
	"github.com/chasm-hq/chasm/pkg/ai"
)

const scoutTries = 3

// SourceScout discovers online sources of hardware feedback.
type SourceScout struct {
	client ai.AgentAIClient
}

// NewSourceScout creates a scout backed by the given AI client.
func NewSourceScout(client ai.AgentAIClient) *SourceScout {
	return &SourceScout{client: client}
}

type scoutedSources struct {
	Sources []string `json:"sources"`
}

// IdentifySubreddits returns subreddits where people discuss the product,
// e.g. ["r/drones", "r/dji"].
func (s *SourceScout) IdentifySubreddits(ctx context.Context, productName string) ([]string, error) {
	return s.askSources(ctx, fmt.Sprintf(subredditPrompt, productName))
}

// FindReviewSites returns authoritative review and teardown domains for the
// product, e.g. ["rtings.com", "ifixit.com"].
func (s *SourceScout) FindReviewSites(ctx context.Context, productName string) ([]string, error) {
	return s.askSources(ctx, fmt.Sprintf(reviewSitePrompt, productName))
}

func (s *SourceScout) askSources(ctx context.Context, prompt string) ([]string, error) {
	// Malformed model output fails decoding; worth a couple of attempts.
	out, err := util.RetryWithContext(ctx, scoutTries, func(ctx context.Context) (scoutedSources, error) {
		var out scoutedSources
		err := s.client.GenerateCompletionWithFormat(ctx,
			"sources",
			"Online sources of hardware product feedback",
			prompt,
			&out,
		)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("source discovery failed: %w", err)
	}

	sources := make([]string, 0, len(out.Sources))
	for _, src := range out.Sources {
		src = strings.TrimSpace(src)
		if src != "" {
			sources = append(sources, src)
		}
	}
	return sources, nil
}
