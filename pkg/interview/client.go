package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Created is the response to a session-creation request.
type Created struct {
	SessionID    string `json:"session_id"`
	Status       Status `json:"status"`
	InterviewURL string `json:"interview_url"`
}

// CompleteResult is the response to a manual completion request.
type CompleteResult struct {
	Status            string `json:"status"`
	SessionID         string `json:"session_id"`
	InsightsExtracted int    `json:"insights_extracted"`
}

// Client talks to the interview session service over HTTP. It implements
// Conversationalist for the state machine.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CreateSession starts a new interview session.
func (c *Client) CreateSession(ctx context.Context) (Created, error) {
	var out Created
	err := c.do(ctx, http.MethodPost, "/api/interviews", nil, &out)
	return out, err
}

// FetchSession loads a session with its full transcript.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodGet, "/api/interviews/"+sessionID, nil, &out)
	return out, err
}

// SendMessage submits user text and returns the interviewer's reply.
// An empty text requests the opening greeting.
func (c *Client) SendMessage(ctx context.Context, sessionID string, text string) (Reply, error) {
	body := map[string]string{"message": text}
	var out Reply
	err := c.do(ctx, http.MethodPost, "/api/interviews/"+sessionID+"/message", body, &out)
	return out, err
}

// Complete ends a session early, triggering insight extraction.
func (c *Client) Complete(ctx context.Context, sessionID string) (CompleteResult, error) {
	var out CompleteResult
	err := c.do(ctx, http.MethodPost, "/api/interviews/"+sessionID+"/complete", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
