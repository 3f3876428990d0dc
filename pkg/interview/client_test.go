package interview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/interviews/sess-1/message" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body["message"] != "the hinge squeaks" {
			t.Errorf("unexpected message payload: %q", body["message"])
		}
		json.NewEncoder(w).Encode(Reply{
			Role:    RoleAssistant,
			Content: "How often does that happen?",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	reply, err := c.SendMessage(context.Background(), "sess-1", "the hinge squeaks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Complete {
		t.Fatal("reply should not be complete")
	}
	if reply.Content != "How often does that happen?" {
		t.Fatalf("unexpected reply content: %q", reply.Content)
	}
}

func TestClientSendMessageCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"role":        RoleAssistant,
			"content":     "Thank you for your time!",
			"is_complete": true,
		})
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL).SendMessage(context.Background(), "sess-1", "that is all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.Complete {
		t.Fatal("expected is_complete to be decoded")
	}
}

func TestClientFetchSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/interviews/sess-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Session{
			ID:     "sess-1",
			Status: StatusActive,
			Messages: []Message{
				{Role: RoleAssistant, Content: "Hello"},
			},
		})
	}))
	defer srv.Close()

	sess, err := NewClient(srv.URL).FetchSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID != "sess-1" || sess.Status != StatusActive || len(sess.Messages) != 1 {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestClientCreateAndComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/interviews":
			json.NewEncoder(w).Encode(Created{
				SessionID:    "sess-9",
				Status:       StatusActive,
				InterviewURL: "https://example.com/interview/sess-9",
			})
		case "/api/interviews/sess-9/complete":
			json.NewEncoder(w).Encode(CompleteResult{
				Status:            "completed",
				SessionID:         "sess-9",
				InsightsExtracted: 3,
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	created, err := c.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.SessionID != "sess-9" {
		t.Fatalf("unexpected created session: %+v", created)
	}

	result, err := c.Complete(context.Background(), created.SessionID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if result.InsightsExtracted != 3 {
		t.Fatalf("unexpected completion result: %+v", result)
	}
}

func TestClientSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchSession(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "session not found") {
		t.Fatalf("error should carry status and body snippet, got: %v", err)
	}
}
