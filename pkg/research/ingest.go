package research

import (
	"context"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/chasm-hq/chasm/pkg/agents"
	"github.com/chasm-hq/chasm/pkg/interview"
	"github.com/chasm-hq/chasm/pkg/knowledge"
	"github.com/chasm-hq/chasm/pkg/logger"
)

// BuildTranscript flattens an interview transcript into Q/A pairs. Each
// user answer is paired with the assistant question preceding it; the
// opening greeting alone produces no pairs.
func BuildTranscript(messages []interview.Message) string {
	var pairs []string
	for i, msg := range messages {
		if msg.Role != interview.RoleUser || i == 0 {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s", messages[i-1].Content, msg.Content))
	}
	return strings.Join(pairs, "\n\n")
}

// IngestInterview extracts insights from a completed interview transcript
// and injects them into the graph, attributing each insight to the tracked
// product its product hint names (first product when no hint matches).
// Returns the number of insights injected.
func (p *Pipeline) IngestInterview(ctx context.Context, session interview.Session) (int, error) {
	transcript := BuildTranscript(session.Messages)
	if strings.TrimSpace(transcript) == "" {
		logger.Warn("[Interview] No user messages to extract", "session_id", session.ID)
		return 0, nil
	}

	payload, err := p.graphs.LoadGraph(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load graph: %w", err)
	}
	g := knowledge.Normalize(payload)

	products := g.NodesOfType(knowledge.NodeProduct)
	if len(products) == 0 {
		logger.Warn("[Interview] No products in graph, cannot attach insights", "session_id", session.ID)
		return 0, nil
	}

	names := make([]string, 0, len(products))
	for _, prod := range products {
		names = append(names, prod.Name)
	}

	insights, err := p.extractor.ExtractFromTranscript(ctx, transcript, strings.Join(names, ", "))
	if err != nil {
		return 0, fmt.Errorf("failed to extract interview insights: %w", err)
	}

	injected := 0
	for _, ins := range insights {
		productID := matchProduct(products, ins.ProductName)
		injected += injectInsights(g, []agents.ExtractedInsight{ins}, injectParams{
			productID:      productID,
			sourceType:     knowledge.SourceEmployeeInterview,
			sourceURL:      "interview://" + session.ID,
			sourceIDPrefix: "src-interview-",
		})
	}

	if injected > 0 {
		if err := p.embedMissingInsights(ctx, g); err != nil {
			return 0, err
		}
		g.LinkSemanticMatches(p.similarityThreshold)
	}

	if err := p.graphs.SaveGraph(ctx, g); err != nil {
		return 0, fmt.Errorf("failed to save graph: %w", err)
	}

	logger.Info("[Interview] Session ingested", "session_id", session.ID, "insights", injected)
	return injected, nil
}

// matchProduct resolves a product-name hint against the tracked products.
// Falls back to the first product when the hint names none of them.
func matchProduct(products []*knowledge.Node, hint string) string {
	target := products[0].ID
	lowered := strings.ToLower(hint)
	for _, prod := range products {
		if prod.Name != "" && strings.Contains(lowered, strings.ToLower(prod.Name)) {
			target = prod.ID
			break
		}
	}
	return target
}

type injectParams struct {
	productID      string
	sourceType     knowledge.SourceType
	sourceURL      string
	sourceIDPrefix string
}

// injectInsights adds one (Component, Source, Insight) triple per extracted
// insight and wires them Product -> Component <- Insight <- Source. Returns
// the number of insights added.
func injectInsights(g *knowledge.Graph, insights []agents.ExtractedInsight, params injectParams) int {
	prefix := params.sourceIDPrefix
	if prefix == "" {
		prefix = "src-"
	}

	added := 0
	for _, ins := range insights {
		compID, err := gonanoid.New(shortIDLength)
		if err != nil {
			continue
		}
		insID, err := gonanoid.New(shortIDLength)
		if err != nil {
			continue
		}
		compID = "comp-" + compID
		insID = "ins-" + insID

		g.AddComponent(knowledge.Component{
			ID:       compID,
			Name:     ins.ComponentName,
			Category: knowledge.ComponentCategory(ins.Category()),
		}, params.productID)

		sourceID := prefix + insID
		g.AddSource(knowledge.Source{
			ID:      sourceID,
			Type:    params.sourceType,
			RawText: ins.Summary,
			URL:     params.sourceURL,
		})

		g.AddInsight(knowledge.Insight{
			ID:        insID,
			Summary:   ins.Summary,
			Sentiment: ins.Sentiment,
			Tags:      ins.Tags,
		}, sourceID, compID)

		added++
	}
	return added
}
