package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/chasm-hq/chasm/pkg/ai"
	"github.com/chasm-hq/chasm/pkg/harvest"
	"github.com/chasm-hq/chasm/pkg/knowledge"
	"github.com/chasm-hq/chasm/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const catalogTokenCap = 30000

// ProductCataloger scrapes a company website and extracts the hardware
// products it sells.
type ProductCataloger struct {
	client    ai.AgentAIClient
	harvester *harvest.Harvester
}

// NewProductCataloger creates a cataloger backed by the given AI client and
// harvester.
func NewProductCataloger(client ai.AgentAIClient, harvester *harvest.Harvester) *ProductCataloger {
	return &ProductCataloger{client: client, harvester: harvester}
}

type catalogedProduct struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type catalogedProducts struct {
	Products []catalogedProduct `json:"products"`
}

// ScrapeCompanySite fetches the company homepage and its product sub-pages,
// returning the combined readable text.
func (c *ProductCataloger) ScrapeCompanySite(ctx context.Context, baseURL string) (string, error) {
	homepageHTML, err := c.harvester.FetchHTML(ctx, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch company site: %w", err)
	}

	var texts []string
	if text, err := c.harvester.ScrapeURL(ctx, baseURL); err == nil && text != "" {
		texts = append(texts, text)
	}

	subLinks := harvest.FindProductLinks(homepageHTML, baseURL, harvest.DefaultMaxProductLinks)
	logger.Info("[Cataloger] discovered product sub-pages", "count", len(subLinks), "url", baseURL)

	for _, link := range subLinks {
		text, err := c.harvester.ScrapeURL(ctx, link)
		if err != nil {
			logger.Warn("[Cataloger] sub-page scrape failed", "url", link, "err", err)
			continue
		}
		if text != "" {
			texts = append(texts, text)
		}
	}

	combined := strings.Join(texts, "\n\n---\n\n")
	if strings.TrimSpace(combined) == "" {
		return "", fmt.Errorf("no extractable text found at %s or its sub-pages", baseURL)
	}
	return combined, nil
}

// ExtractProducts sends scraped site text to the AI client and parses out
// Product entities. The original URL is stored on each product.
func (c *ProductCataloger) ExtractProducts(ctx context.Context, siteText string, baseURL string) ([]knowledge.Product, error) {
	prompt := fmt.Sprintf(productExtractionPrompt, capTokens(siteText, catalogTokenCap))

	var out catalogedProducts
	err := c.client.GenerateCompletionWithFormat(ctx,
		"products",
		"Physical hardware products sold by a company",
		prompt,
		&out,
	)
	if err != nil {
		return nil, fmt.Errorf("product extraction failed: %w", err)
	}

	products := make([]knowledge.Product, 0, len(out.Products))
	for _, item := range out.Products {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		id, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		products = append(products, knowledge.Product{
			ID:          "prod-" + id,
			Name:        name,
			Description: strings.TrimSpace(item.Description),
			URL:         baseURL,
		})
	}
	return products, nil
}

// Discover runs the full scrape and extract flow for a company site.
func (c *ProductCataloger) Discover(ctx context.Context, baseURL string) ([]knowledge.Product, error) {
	text, err := c.ScrapeCompanySite(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	return c.ExtractProducts(ctx, text, baseURL)
}
