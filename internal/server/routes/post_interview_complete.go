package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chasm-hq/chasm/pkg/interview"
	"github.com/chasm-hq/chasm/pkg/store"
)

// CompleteInterviewHandler ends an interview early and extracts whatever
// insights the transcript holds.
func CompleteInterviewHandler(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("id")

	session, err := sessionStore(c).GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Interview session not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if session.Status == interview.StatusCompleted {
		return c.JSON(http.StatusOK, map[string]any{
			"status":     "already_completed",
			"session_id": sessionID,
		})
	}

	injected, err := completeSession(c, session)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":             "completed",
		"session_id":         sessionID,
		"insights_extracted": injected,
	})
}
