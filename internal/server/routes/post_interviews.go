package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/chasm-hq/chasm/pkg/interview"
)

// CreateInterviewHandler creates a new interview session and returns its
// shareable URL.
func CreateInterviewHandler(c echo.Context) error {
	type sessionOut struct {
		SessionID    string `json:"session_id"`
		Status       string `json:"status"`
		InterviewURL string `json:"interview_url"`
	}

	ctx := c.Request().Context()

	id, err := gonanoid.New()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	session := interview.Session{
		ID:        id,
		Status:    interview.StatusActive,
		Messages:  []interview.Message{},
		CreatedAt: time.Now().UTC(),
	}
	if err := sessionStore(c).CreateSession(ctx, session); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, sessionOut{
		SessionID:    session.ID,
		Status:       string(session.Status),
		InterviewURL: "/interview/" + session.ID,
	})
}
