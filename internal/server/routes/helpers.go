package routes

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chasm-hq/chasm/internal/server/middleware"
	"github.com/chasm-hq/chasm/pkg/knowledge"
	"github.com/chasm-hq/chasm/pkg/research"
	chasmpgx "github.com/chasm-hq/chasm/pkg/store/pgx"
)

func appContext(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

func graphStore(c echo.Context) *chasmpgx.GraphDBStorage {
	return chasmpgx.NewGraphDBStorage(appContext(c).DBConn)
}

func sessionStore(c echo.Context) *chasmpgx.SessionDBStorage {
	return chasmpgx.NewSessionDBStorage(appContext(c).DBConn)
}

func newPipeline(c echo.Context) *research.Pipeline {
	app := appContext(c)
	return research.NewPipeline(research.PipelineParams{
		AIClient: app.AiClient,
		Graphs:   chasmpgx.NewGraphDBStorage(app.DBConn),
		S3Client: app.S3,
	})
}

// productNames returns a comma-separated list of tracked product names for
// interviewer prompts, with a generic fallback when none are onboarded yet.
func productNames(ctx context.Context, c echo.Context) string {
	products, err := graphStore(c).ListProducts(ctx)
	if err != nil || len(products) == 0 {
		return "the company's products"
	}
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

type productOut struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

func toProductOut(products []knowledge.Product) []productOut {
	out := make([]productOut, 0, len(products))
	for _, p := range products {
		out = append(out, productOut{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			URL:         p.URL,
		})
	}
	return out
}
