package research

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chasm-hq/chasm/internal/storage"
	"github.com/chasm-hq/chasm/pkg/agents"
	"github.com/chasm-hq/chasm/pkg/knowledge"
	"github.com/chasm-hq/chasm/pkg/logger"
)

// PublishBriefing generates the Monday Morning Briefing for one product and
// stores it in S3. Returns the report's object key.
func (p *Pipeline) PublishBriefing(ctx context.Context, product knowledge.Product) (string, error) {
	payload, err := p.graphs.LoadGraph(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load graph: %w", err)
	}
	g := knowledge.Normalize(payload)

	digests := collectDigests(g, product.ID)

	report, err := p.publisher.GenerateBriefing(ctx, product.Name, digests)
	if err != nil {
		return "", fmt.Errorf("failed to generate briefing: %w", err)
	}

	key := storage.ReportKey(product.ID, agents.ReportName(time.Now()))
	if p.s3Client == nil {
		return "", fmt.Errorf("no object storage configured")
	}
	if _, err := storage.PutMarkdown(ctx, p.s3Client, key, []byte(report)); err != nil {
		return "", err
	}

	logger.Info("[Briefing] Report published", "product", product.Name, "key", key, "insights", len(digests))
	return key, nil
}

// collectDigests walks Product -> HAS_COMPONENT -> Component <- ABOUT <-
// Insight and flattens each insight into a briefing line. Insights linked
// ABOUT the product directly are included under the General bucket.
func collectDigests(g *knowledge.Graph, productID string) []agents.InsightDigest {
	var digests []agents.InsightDigest

	appendInsight := func(insightID, componentName string) {
		n, ok := g.Node(insightID)
		if !ok || n.Type != knowledge.NodeInsight {
			return
		}
		sentiment := 0.0
		if n.Sentiment != nil {
			sentiment = *n.Sentiment
		}
		digests = append(digests, agents.InsightDigest{
			ComponentName: componentName,
			Summary:       n.Summary,
			Sentiment:     sentiment,
			Tags:          attrTags(n),
		})
	}

	for _, l := range g.Incident(productID) {
		switch {
		case l.Relation == knowledge.RelationHasComponent && l.Source.ID == productID:
			comp, ok := g.Node(l.Target.ID)
			if !ok {
				continue
			}
			name := comp.Name
			if name == "" {
				name = knowledge.GeneralComponent
			}
			for _, cl := range g.Incident(comp.ID) {
				if cl.Relation == knowledge.RelationAbout && cl.Target.ID == comp.ID {
					appendInsight(cl.Source.ID, name)
				}
			}
		case l.Relation == knowledge.RelationAbout && l.Target.ID == productID:
			appendInsight(l.Source.ID, knowledge.GeneralComponent)
		}
	}

	return digests
}

func attrTags(n *knowledge.Node) []string {
	raw, ok := n.Attrs["tags"]
	if !ok {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}
