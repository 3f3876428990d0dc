package interview

import (
	"context"
	"time"
)

// Status is the lifecycle state of an interview session. Sessions are
// created externally, stay active while the conversation runs, and flip to
// completed exactly once; completed is terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Message roles. The transcript alternates between the two by convention:
// only one side appends at a time.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry of an interview transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a structured feedback interview as served by the session
// service.
type Session struct {
	ID          string     `json:"session_id"`
	Status      Status     `json:"status"`
	Messages    []Message  `json:"messages"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Reply is the remote interviewer's answer to a sent message. Complete
// signals that the interviewer has wrapped up and the session is now closed.
type Reply struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Complete bool   `json:"is_complete"`
}

// Conversationalist is the remote conversational collaborator the state
// machine runs against. Sending an empty text on a fresh session is the
// defined way to request the opening greeting. Keeping this abstract keeps
// the machine testable with a stub, independent of which model or service
// answers.
type Conversationalist interface {
	FetchSession(ctx context.Context, sessionID string) (Session, error)
	SendMessage(ctx context.Context, sessionID string, text string) (Reply, error)
}
