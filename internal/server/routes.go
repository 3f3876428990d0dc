package server

import (
	"github.com/chasm-hq/chasm/internal/server/middleware"
	"github.com/chasm-hq/chasm/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Public routes: the dashboard reads the graph without credentials and
	// interview links are shareable.
	api := e.Group("/api")
	api.GET("/products", routes.GetProductsHandler)
	api.GET("/graph", routes.GetGraphHandler)
	api.GET("/graph/sentiment", routes.GetSentimentHandler)
	api.GET("/graph/highlight/:id", routes.GetHighlightHandler)
	api.GET("/interviews/:id", routes.GetInterviewHandler)
	api.POST("/interviews/:id/message", routes.SendInterviewMessageHandler)

	// Operator routes
	operator := e.Group("/api", middleware.AuthMiddleware)
	operator.POST("/interviews", routes.CreateInterviewHandler)
	operator.POST("/interviews/:id/complete", routes.CompleteInterviewHandler)
	operator.POST("/onboard", routes.OnboardCompanyHandler)
	operator.POST("/onboard/confirm", routes.ConfirmOnboardingHandler)
	operator.POST("/research/:product_id", routes.TriggerResearchHandler)
	operator.GET("/reports/:product_id", routes.ListReportsHandler)
	operator.GET("/reports/:product_id/:name", routes.GetReportHandler)
	operator.DELETE("/reports/:product_id", routes.DeleteReportsHandler)
	operator.DELETE("/reports/:product_id/:name", routes.DeleteReportHandler)
}
