package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chasm-hq/chasm/pkg/agents"
	"github.com/chasm-hq/chasm/pkg/harvest"
	"github.com/chasm-hq/chasm/pkg/knowledge"
)

// OnboardCompanyHandler scrapes a company website and returns the products
// discovered on it. Nothing is saved until the selection is confirmed.
func OnboardCompanyHandler(c echo.Context) error {
	type onboardRequest struct {
		URL string `json:"url" validate:"required,url"`
	}

	var req onboardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()

	cataloger := agents.NewProductCataloger(appContext(c).AiClient, harvest.NewHarvester())
	products, err := cataloger.Discover(ctx, req.URL)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, toProductOut(products))
}

// ConfirmOnboardingHandler adds the selected products to the graph.
func ConfirmOnboardingHandler(c echo.Context) error {
	type confirmRequest struct {
		Products []productOut `json:"products" validate:"required,min=1,dive"`
	}

	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	graphs := graphStore(c)

	payload, err := graphs.LoadGraph(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	g := knowledge.Normalize(payload)

	added := make([]string, 0, len(req.Products))
	for _, p := range req.Products {
		if p.ID == "" || p.Name == "" {
			continue
		}
		g.AddProduct(knowledge.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			URL:         p.URL,
		})
		added = append(added, p.Name)
	}

	if err := graphs.SaveGraph(ctx, g); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"added":       added,
		"graph_nodes": g.NodeCount(),
		"graph_links": g.LinkCount(),
	})
}
