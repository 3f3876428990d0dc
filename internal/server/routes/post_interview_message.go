package routes

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chasm-hq/chasm/pkg/agents"
	"github.com/chasm-hq/chasm/pkg/ai"
	"github.com/chasm-hq/chasm/pkg/interview"
	"github.com/chasm-hq/chasm/pkg/logger"
	"github.com/chasm-hq/chasm/pkg/store"
)

type messageOut struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	IsComplete bool   `json:"is_complete"`
}

// SendInterviewMessageHandler advances the conversation by one turn. An
// empty message on a fresh session requests the opening greeting; a reply
// containing the completion phrase closes the session and extracts its
// insights into the graph.
func SendInterviewMessageHandler(c echo.Context) error {
	type messageRequest struct {
		Message string `json:"message"`
	}

	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	sessions := sessionStore(c)

	session, err := sessions.GetSession(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Interview session not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if session.Status == interview.StatusCompleted {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "This interview has already been completed"})
	}

	interviewer := agents.NewInterviewer(appContext(c).AiClient)
	names := productNames(ctx, c)

	// A session without messages has not been opened yet: generate the
	// greeting first, then treat the user's text as a follow-up.
	if len(session.Messages) == 0 {
		greeting, err := interviewer.StartInterview(ctx, names)
		if err != nil {
			return c.String(http.StatusBadGateway, err.Error())
		}
		session.Messages = append(session.Messages, interview.Message{
			Role:      interview.RoleAssistant,
			Content:   greeting,
			Timestamp: time.Now().UTC(),
		})
		if err := sessions.SaveSession(ctx, session); err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}

		if strings.TrimSpace(req.Message) == "" {
			return c.JSON(http.StatusOK, messageOut{Role: interview.RoleAssistant, Content: greeting})
		}
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is empty"})
	}

	session.Messages = append(session.Messages, interview.Message{
		Role:      interview.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now().UTC(),
	})

	history := make([]ai.ChatMessage, 0, len(session.Messages))
	for _, m := range session.Messages {
		history = append(history, ai.ChatMessage{Role: m.Role, Message: m.Content})
	}

	reply, err := interviewer.NextTurn(ctx, history, names)
	if err != nil {
		return c.String(http.StatusBadGateway, err.Error())
	}
	isComplete := agents.IsComplete(reply)

	session.Messages = append(session.Messages, interview.Message{
		Role:      interview.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	})
	if err := sessions.SaveSession(ctx, session); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if isComplete {
		injected, err := completeSession(c, session)
		if err != nil {
			logger.Error("Failed to complete interview", "session_id", session.ID, "err", err)
		} else {
			logger.Info("Interview auto-completed", "session_id", session.ID, "insights", injected)
		}
	}

	return c.JSON(http.StatusOK, messageOut{
		Role:       interview.RoleAssistant,
		Content:    reply,
		IsComplete: isComplete,
	})
}

// completeSession marks the session completed and extracts its transcript
// insights into the graph. Returns the number of insights injected.
func completeSession(c echo.Context, session interview.Session) (int, error) {
	ctx := c.Request().Context()

	now := time.Now().UTC()
	session.Status = interview.StatusCompleted
	session.CompletedAt = &now
	if err := sessionStore(c).SaveSession(ctx, session); err != nil {
		return 0, err
	}

	return newPipeline(c).IngestInterview(ctx, session)
}
