package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetProductsHandler returns all tracked products.
func GetProductsHandler(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := graphStore(c).ListProducts(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, toProductOut(products))
}
