package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chasm-hq/chasm/internal/storage"
)

// DeleteReportHandler removes a single briefing report from object storage.
func DeleteReportHandler(c echo.Context) error {
	ctx := c.Request().Context()
	productID := c.Param("product_id")
	name := c.Param("name")

	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid report name"})
	}

	key := storage.ReportKey(productID, name)
	if err := storage.DeleteFile(ctx, appContext(c).S3, key); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted", "key": key})
}

// DeleteReportsHandler purges every briefing report stored for a product.
func DeleteReportsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	productID := c.Param("product_id")

	prefix := storage.ReportKey(productID, "")
	if err := storage.DeleteFolder(ctx, appContext(c).S3, prefix); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted", "prefix": prefix})
}
