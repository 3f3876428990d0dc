package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chasm-hq/chasm/pkg/store"
)

// GetInterviewHandler returns full session details including the
// conversation history.
func GetInterviewHandler(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := sessionStore(c).GetSession(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Interview session not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, session)
}
