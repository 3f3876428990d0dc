package harvest

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// DefaultMaxProductLinks caps how many sub-pages the cataloger follows
// from a company homepage.
const DefaultMaxProductLinks = 8

var productPathPattern = regexp.MustCompile(
	`(?i)/(product|drone|camera|robomaster|store|shop|mavic|phantom|inspire|mini|air|avata|neo|flip)`,
)

// FindProductLinks parses homepage HTML and returns same-domain links whose
// paths look like product pages, in document order, deduplicated by path.
func FindProductLinks(pageHTML string, baseURL string, maxLinks int) []string {
	if maxLinks <= 0 {
		maxLinks = DefaultMaxProductLinks
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(links) >= maxLinks {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				full := base.ResolveReference(ref)
				if full.Host != base.Host {
					continue
				}
				path := strings.TrimRight(full.Path, "/")
				if path == "" || path == "/" {
					continue
				}
				if _, ok := seen[path]; ok {
					continue
				}
				seen[path] = struct{}{}
				if productPathPattern.MatchString(path) {
					links = append(links, full.String())
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}
