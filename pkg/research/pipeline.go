package research

import (
	"context"
	"fmt"
	"strings"
	"sync"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/chasm-hq/chasm/internal/storage"
	"github.com/chasm-hq/chasm/pkg/agents"
	"github.com/chasm-hq/chasm/pkg/ai"
	"github.com/chasm-hq/chasm/pkg/harvest"
	"github.com/chasm-hq/chasm/pkg/knowledge"
	"github.com/chasm-hq/chasm/pkg/logger"
	"github.com/chasm-hq/chasm/pkg/store"
)

const (
	defaultScrapeWorkers = 4
	embedChunk           = 64
	shortIDLength        = 8
)

// Pipeline runs the research cycle for tracked products: discover sources,
// scrape them, extract insights and inject them into the knowledge graph.
type Pipeline struct {
	aiClient  ai.AgentAIClient
	graphs    store.GraphStorage
	harvester *harvest.Harvester
	s3Client  *awss3.Client

	scout     *agents.SourceScout
	extractor *agents.InsightExtractor
	publisher *agents.BriefingPublisher

	similarityThreshold float64
	scrapeWorkers       int
}

type PipelineParams struct {
	AIClient  ai.AgentAIClient
	Graphs    store.GraphStorage
	Harvester *harvest.Harvester
	S3Client  *awss3.Client

	// SimilarityThreshold for semantic linking; defaults to the knowledge
	// package default when zero.
	SimilarityThreshold float64
	ScrapeWorkers       int
}

func NewPipeline(params PipelineParams) *Pipeline {
	if params.SimilarityThreshold <= 0 {
		params.SimilarityThreshold = knowledge.DefaultSimilarityThreshold
	}
	if params.ScrapeWorkers <= 0 {
		params.ScrapeWorkers = defaultScrapeWorkers
	}
	harvester := params.Harvester
	if harvester == nil {
		harvester = harvest.NewHarvester()
	}
	return &Pipeline{
		aiClient:            params.AIClient,
		graphs:              params.Graphs,
		harvester:           harvester,
		s3Client:            params.S3Client,
		scout:               agents.NewSourceScout(params.AIClient),
		extractor:           agents.NewInsightExtractor(params.AIClient),
		publisher:           agents.NewBriefingPublisher(params.AIClient),
		similarityThreshold: params.SimilarityThreshold,
		scrapeWorkers:       params.ScrapeWorkers,
	}
}

type scrapedDoc struct {
	url  string
	text string
}

// ResearchProduct runs the full research cycle for one product and returns
// the number of insights injected into the graph. Individual source
// failures are logged and skipped; only graph load/save and extraction
// failures abort the run.
func (p *Pipeline) ResearchProduct(ctx context.Context, product knowledge.Product) (int, error) {
	logger.Info("[Research] Starting run", "product", product.Name, "product_id", product.ID)

	sources := p.discoverSources(ctx, product.Name)
	if len(sources) == 0 {
		logger.Warn("[Research] No sources discovered", "product", product.Name)
	}

	docs := p.scrapeSources(ctx, product.ID, sources)
	if len(docs) == 0 {
		logger.Warn("[Research] Nothing scraped", "product", product.Name)
		return 0, nil
	}

	payload, err := p.graphs.LoadGraph(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load graph: %w", err)
	}
	g := knowledge.Normalize(payload)

	injected := 0
	for _, doc := range docs {
		insights, err := p.extractor.ExtractFromFeedback(ctx, doc.text, product.Name)
		if err != nil {
			logger.Warn("[Research] Extraction failed", "url", doc.url, "err", err)
			continue
		}
		injected += injectInsights(g, insights, injectParams{
			productID:  product.ID,
			sourceType: sourceTypeForURL(doc.url),
			sourceURL:  doc.url,
		})
	}

	if injected > 0 {
		if err := p.embedMissingInsights(ctx, g); err != nil {
			return 0, err
		}
		links := g.LinkSemanticMatches(p.similarityThreshold)
		logger.Info("[Research] Semantic linking done", "links_added", links)
	}

	if err := p.graphs.SaveGraph(ctx, g); err != nil {
		return 0, fmt.Errorf("failed to save graph: %w", err)
	}

	logger.Info("[Research] Run complete",
		"product", product.Name,
		"insights", injected,
		"nodes", g.NodeCount(),
		"links", g.LinkCount(),
	)
	return injected, nil
}

// discoverSources asks the scout for subreddits and review sites and
// normalizes both lists into scrapeable URLs.
func (p *Pipeline) discoverSources(ctx context.Context, productName string) []string {
	var sources []string

	subreddits, err := p.scout.IdentifySubreddits(ctx, productName)
	if err != nil {
		logger.Warn("[Research] Subreddit discovery failed", "err", err)
	}
	for _, sub := range subreddits {
		name := strings.TrimSpace(strings.TrimPrefix(sub, "r/"))
		if name == "" {
			continue
		}
		sources = append(sources, "https://www.reddit.com/r/"+name+"/")
	}

	sites, err := p.scout.FindReviewSites(ctx, productName)
	if err != nil {
		logger.Warn("[Research] Review site discovery failed", "err", err)
	}
	for _, site := range sites {
		if !strings.HasPrefix(site, "http://") && !strings.HasPrefix(site, "https://") {
			site = "https://" + site
		}
		sources = append(sources, site)
	}

	return store.DedupeStrings(sources)
}

// scrapeSources fetches every source in parallel and archives the raw text
// as markdown in S3. Failed scrapes are dropped.
func (p *Pipeline) scrapeSources(ctx context.Context, productID string, sources []string) []scrapedDoc {
	var (
		mu   sync.Mutex
		docs []scrapedDoc
	)

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(p.scrapeWorkers)

	for _, src := range sources {
		url := src
		eg.Go(func() error {
			text, err := p.harvester.ScrapeURL(ectx, url)
			if err != nil {
				logger.Warn("[Research] Scrape failed", "url", url, "err", err)
				return nil
			}
			if strings.TrimSpace(text) == "" {
				return nil
			}

			p.archiveRawDoc(ectx, productID, url, text)

			mu.Lock()
			docs = append(docs, scrapedDoc{url: url, text: text})
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return docs
}

// archiveRawDoc stores the scraped text in S3 with a frontmatter header so
// a run can be replayed from the archive. Archive failures do not stop the
// pipeline.
func (p *Pipeline) archiveRawDoc(ctx context.Context, productID, url, text string) {
	if p.s3Client == nil {
		return
	}
	docID, err := gonanoid.New(shortIDLength)
	if err != nil {
		return
	}
	content := fmt.Sprintf("---\nsource_url: %s\n---\n\n%s", url, text)
	key := storage.RawDocumentKey(productID, docID)
	if _, err := storage.PutMarkdown(ctx, p.s3Client, key, []byte(content)); err != nil {
		logger.Warn("[Research] Failed to archive raw document", "url", url, "err", err)
	}
}

// embedMissingInsights generates embeddings for scored insights that do not
// carry one yet.
func (p *Pipeline) embedMissingInsights(ctx context.Context, g *knowledge.Graph) error {
	var (
		ids    []string
		inputs [][]byte
	)
	for _, n := range g.NodesOfType(knowledge.NodeInsight) {
		if len(n.Embedding) > 0 || n.Summary == "" {
			continue
		}
		ids = append(ids, n.ID)
		inputs = append(inputs, []byte(n.Summary))
	}
	if len(ids) == 0 {
		return nil
	}

	embeddings, err := store.GenerateEmbeddings(ctx, p.aiClient, inputs, embedChunk)
	if err != nil {
		return fmt.Errorf("failed to embed insights: %w", err)
	}
	for i, id := range ids {
		if i < len(embeddings) {
			g.SetEmbedding(id, embeddings[i])
		}
	}
	return nil
}

func sourceTypeForURL(url string) knowledge.SourceType {
	if strings.Contains(url, "reddit.com") {
		return knowledge.SourceReddit
	}
	return knowledge.SourceReview
}
