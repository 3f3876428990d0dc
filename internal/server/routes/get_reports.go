package routes

import (
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chasm-hq/chasm/internal/storage"
)

// ListReportsHandler lists the briefing reports available for a product,
// newest first.
func ListReportsHandler(c echo.Context) error {
	type reportOut struct {
		Filename    string `json:"filename"`
		ProductID   string `json:"product_id"`
		Key         string `json:"key"`
		DownloadURL string `json:"download_url,omitempty"`
	}

	ctx := c.Request().Context()
	productID := c.Param("product_id")

	prefix := storage.ReportKey(productID, "")
	keys, err := storage.ListFilesWithPrefix(ctx, appContext(c).S3, prefix)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	reports := make([]reportOut, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".md") {
			continue
		}
		// Best effort: a report without a presigned link is still listed.
		downloadURL, err := storage.GenerateDownloadLink(ctx, appContext(c).S3, key)
		if err != nil {
			downloadURL = ""
		}
		reports = append(reports, reportOut{
			Filename:    path.Base(key),
			ProductID:   productID,
			Key:         key,
			DownloadURL: downloadURL,
		})
	}
	return c.JSON(http.StatusOK, reports)
}

// GetReportHandler returns the content of one briefing report.
func GetReportHandler(c echo.Context) error {
	ctx := c.Request().Context()
	productID := c.Param("product_id")
	name := c.Param("name")

	// Object keys are built server-side; refuse path traversal in the name.
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid report name"})
	}

	content, err := storage.GetFile(ctx, appContext(c).S3, storage.ReportKey(productID, name))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Report not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"content": string(content)})
}
