package routes

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/chasm-hq/chasm/pkg/knowledge"
)

// GetGraphHandler returns the full knowledge graph as a node-link payload.
func GetGraphHandler(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := graphStore(c).LoadGraph(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	g := knowledge.Normalize(payload)
	return c.JSON(http.StatusOK, g.Payload())
}

// GetSentimentHandler returns the internal-vs-external sentiment comparison
// per component, with the sign-based quadrant attached.
func GetSentimentHandler(c echo.Context) error {
	type sentimentOut struct {
		knowledge.ComponentSentiment
		Quadrant knowledge.Quadrant `json:"quadrant"`
	}

	ctx := c.Request().Context()

	payload, err := graphStore(c).LoadGraph(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	g := knowledge.Normalize(payload)
	records := g.ComponentSentiments()

	out := make([]sentimentOut, 0, len(records))
	for _, r := range records {
		out = append(out, sentimentOut{ComponentSentiment: r, Quadrant: r.Quadrant()})
	}
	return c.JSON(http.StatusOK, out)
}

// GetHighlightHandler returns the ids of the focal node's closed
// neighborhood: the node, its direct neighbors and the links among them.
func GetHighlightHandler(c echo.Context) error {
	type highlightOut struct {
		Nodes []string `json:"nodes"`
		Links []string `json:"links"`
	}

	ctx := c.Request().Context()
	focalID := c.Param("id")

	payload, err := graphStore(c).LoadGraph(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	g := knowledge.Normalize(payload)
	if _, ok := g.Node(focalID); !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Node not found"})
	}

	set := g.Highlight(focalID)

	out := highlightOut{Nodes: make([]string, 0, len(set.Nodes)), Links: make([]string, 0, len(set.Links))}
	for id := range set.Nodes {
		out.Nodes = append(out.Nodes, id)
	}
	for key := range set.Links {
		out.Links = append(out.Links, key)
	}
	sort.Strings(out.Nodes)
	sort.Strings(out.Links)
	return c.JSON(http.StatusOK, out)
}
