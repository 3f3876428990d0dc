package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/chasm-hq/chasm/internal/queue"
)

// TriggerResearchHandler queues a research run for one product. The worker
// picks the job up; the API responds immediately.
func TriggerResearchHandler(c echo.Context) error {
	ctx := c.Request().Context()
	productID := c.Param("product_id")

	products, err := graphStore(c).ListProducts(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	found := false
	for _, p := range products {
		if p.ID == productID {
			found = true
			break
		}
	}
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not in graph"})
	}

	correlationID, err := gonanoid.New()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	msg, err := json.Marshal(queue.ResearchJobMsg{
		ProductID:     productID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if err := queue.PublishFIFO(appContext(c).Queue, queue.ResearchQueue, msg); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"status":         "research_queued",
		"product_id":     productID,
		"correlation_id": correlationID,
	})
}
