package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultUserAgent = "chasm-harvester/1.0"
	maxBodyBytes     = 4 << 20
)

// Harvester fetches web pages and extracts readable article text.
// For HTML pages, it uses readability to extract the main content.
// Fetched pages are cached for the lifetime of the harvester so the
// cataloger and the research pipeline never hit the same URL twice.
type Harvester struct {
	httpClient *http.Client
	userAgent  string

	cache   map[string]string
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewHarvester creates a harvester with a sane request timeout.
func NewHarvester() *Harvester {
	return &Harvester{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: defaultUserAgent,
		cache:     make(map[string]string),
	}
}

// ScrapeURL fetches a URL and extracts the readable text content.
// For HTML pages, the main article content is extracted; other content
// types are returned as-is, capped at maxBodyBytes.
func (h *Harvester) ScrapeURL(ctx context.Context, rawURL string) (string, error) {
	h.cacheMu.RLock()
	if cached, ok := h.cache[rawURL]; ok {
		h.cacheMu.RUnlock()
		return cached, nil
	}
	h.cacheMu.RUnlock()

	result, err, _ := h.group.Do(rawURL, func() (any, error) {
		h.cacheMu.RLock()
		if cached, ok := h.cache[rawURL]; ok {
			h.cacheMu.RUnlock()
			return cached, nil
		}
		h.cacheMu.RUnlock()

		text, err := h.fetchAndExtract(ctx, rawURL)
		if err != nil {
			return "", err
		}

		h.cacheMu.Lock()
		h.cache[rawURL] = text
		h.cacheMu.Unlock()

		return text, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (h *Harvester) fetchAndExtract(ctx context.Context, rawURL string) (string, error) {
	body, contentType, err := h.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	if strings.Contains(contentType, "text/html") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("failed to parse url: %w", err)
		}
		article, err := readability.FromReader(strings.NewReader(body), u)
		if err != nil {
			return "", fmt.Errorf("failed to parse html: %w", err)
		}
		var builder strings.Builder
		if err := article.RenderText(&builder); err != nil {
			return "", fmt.Errorf("failed to render article text: %w", err)
		}
		return builder.String(), nil
	}

	return body, nil
}

// FetchHTML fetches a URL and returns the raw HTML body. The cataloger
// uses this for link discovery before readability strips the markup.
func (h *Harvester) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	body, contentType, err := h.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if !strings.Contains(contentType, "text/html") {
		return "", fmt.Errorf("unexpected content type %q for %s", contentType, rawURL)
	}
	return body, nil
}

func (h *Harvester) fetch(ctx context.Context, rawURL string) (body string, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to read body: %w", err)
	}

	return string(data), resp.Header.Get("Content-Type"), nil
}
