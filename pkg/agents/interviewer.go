package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/chasm-hq/chasm/pkg/ai"
)

// Interviewer conducts conversational employee interviews, one question at a
// time, guided by a fixed interview flow.
type Interviewer struct {
	client ai.AgentAIClient
}

// NewInterviewer creates an interviewer backed by the given AI client.
func NewInterviewer(client ai.AgentAIClient) *Interviewer {
	return &Interviewer{client: client}
}

// StartInterview generates the opening greeting for a new interview.
// productNames is a comma-separated list of the company's products, used
// as interview context.
func (a *Interviewer) StartInterview(ctx context.Context, productNames string) (string, error) {
	system := fmt.Sprintf(interviewSystemPrompt, productNames)

	reply, err := a.client.GenerateCompletion(ctx,
		"Please begin the interview with a friendly greeting.",
		ai.WithSystemPrompts(system),
		ai.WithTemperature(0.7),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate greeting: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// NextTurn generates the interviewer's next message given the conversation
// so far.
func (a *Interviewer) NextTurn(ctx context.Context, history []ai.ChatMessage, productNames string) (string, error) {
	system := fmt.Sprintf(interviewSystemPrompt, productNames)

	reply, err := a.client.GenerateChat(ctx, history,
		ai.WithSystemPrompts(system),
		ai.WithTemperature(0.7),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate interview turn: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// IsComplete reports whether an interviewer reply signals the end of the
// interview. Detection is case-insensitive on the completion phrase.
func IsComplete(reply string) bool {
	return strings.Contains(strings.ToLower(reply), CompletionPhrase)
}
