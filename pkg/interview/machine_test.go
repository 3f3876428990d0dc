package interview

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubService implements Conversationalist with function fields.
type stubService struct {
	fetch func(ctx context.Context, id string) (Session, error)
	send  func(ctx context.Context, id string, text string) (Reply, error)
}

func (s *stubService) FetchSession(ctx context.Context, id string) (Session, error) {
	return s.fetch(ctx, id)
}

func (s *stubService) SendMessage(ctx context.Context, id string, text string) (Reply, error) {
	return s.send(ctx, id, text)
}

func freshSession() Session {
	return Session{ID: "sess-1", Status: StatusActive, CreatedAt: time.Now().UTC()}
}

func TestStartFreshSessionRequestsGreeting(t *testing.T) {
	var probes []string
	svc := &stubService{
		fetch: func(ctx context.Context, id string) (Session, error) {
			return freshSession(), nil
		},
		send: func(ctx context.Context, id string, text string) (Reply, error) {
			probes = append(probes, text)
			return Reply{Role: RoleAssistant, Content: "Hi! Which product do you work on?"}, nil
		},
	}

	m := NewMachine(svc, "sess-1")
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(probes) != 1 || probes[0] != "" {
		t.Fatalf("expected exactly one empty greeting probe, got %v", probes)
	}
	if m.State() != StateInProgress {
		t.Fatalf("expected in_progress, got %s", m.State())
	}

	transcript := m.Transcript()
	if len(transcript) != 1 || transcript[0].Role != RoleAssistant {
		t.Fatalf("expected a single assistant greeting, got %+v", transcript)
	}
}

func TestStartResumesExistingTranscript(t *testing.T) {
	svc := &stubService{
		fetch: func(ctx context.Context, id string) (Session, error) {
			s := freshSession()
			s.Messages = []Message{
				{Role: RoleAssistant, Content: "Hello"},
				{Role: RoleUser, Content: "Hi, I work on the gimbal"},
			}
			return s, nil
		},
		send: func(ctx context.Context, id string, text string) (Reply, error) {
			t.Fatal("resume must not probe the service")
			return Reply{}, nil
		},
	}

	m := NewMachine(svc, "sess-1")
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.State() != StateInProgress {
		t.Fatalf("expected in_progress, got %s", m.State())
	}
	if len(m.Transcript()) != 2 {
		t.Fatalf("expected resumed transcript, got %+v", m.Transcript())
	}
}

func TestStartCompletedSessionLocksInput(t *testing.T) {
	svc := &stubService{
		fetch: func(ctx context.Context, id string) (Session, error) {
			s := freshSession()
			s.Status = StatusCompleted
			s.Messages = []Message{{Role: RoleAssistant, Content: "Thank you for your time"}}
			return s, nil
		},
	}

	m := NewMachine(svc, "sess-1")
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", m.State())
	}

	if _, err := m.Send(context.Background(), "one more thing"); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
}

func TestStartFetchFailureIsTerminal(t *testing.T) {
	svc := &stubService{
		fetch: func(ctx context.Context, id string) (Session, error) {
			return Session{}, errors.New("connection refused")
		},
	}

	m := NewMachine(svc, "sess-1")
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if m.State() != StateErrored {
		t.Fatalf("expected errored, got %s", m.State())
	}
	if m.CanSend() {
		t.Fatal("terminal error must not stay sendable")
	}
	if _, err := m.Send(context.Background(), "hello"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestStartGreetingFailureIsTerminal(t *testing.T) {
	svc := &stubService{
		fetch: func(ctx context.Context, id string) (Session, error) {
			return freshSession(), nil
		},
		send: func(ctx context.Context, id string, text string) (Reply, error) {
			return Reply{}, errors.New("upstream timeout")
		},
	}

	m := NewMachine(svc, "sess-1")
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if m.State() != StateErrored || m.CanSend() {
		t.Fatalf("expected terminal errored state, got %s", m.State())
	}
}

func startedMachine(t *testing.T, send func(ctx context.Context, id string, text string) (Reply, error)) *Machine {
	t.Helper()
	calls := 0
	svc := &stubService{
		fetch: func(ctx context.Context, id string) (Session, error) {
			return freshSession(), nil
		},
		send: func(ctx context.Context, id string, text string) (Reply, error) {
			calls++
			if calls == 1 {
				return Reply{Role: RoleAssistant, Content: "Hello!"}, nil
			}
			return send(ctx, id, text)
		},
	}
	m := NewMachine(svc, "sess-1")
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestSendAppendsBothSides(t *testing.T) {
	m := startedMachine(t, func(ctx context.Context, id string, text string) (Reply, error) {
		return Reply{Role: RoleAssistant, Content: "Tell me more."}, nil
	})

	msg, err := m.Send(context.Background(), "  the battery drains fast  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Role != RoleAssistant || msg.Content != "Tell me more." {
		t.Fatalf("unexpected reply message: %+v", msg)
	}

	transcript := m.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("expected greeting + user + assistant, got %+v", transcript)
	}
	if transcript[1].Role != RoleUser || transcript[1].Content != "the battery drains fast" {
		t.Fatalf("expected trimmed user message, got %+v", transcript[1])
	}
}

func TestSendBlankRejected(t *testing.T) {
	m := startedMachine(t, func(ctx context.Context, id string, text string) (Reply, error) {
		t.Fatal("blank message must not reach the service")
		return Reply{}, nil
	})

	if _, err := m.Send(context.Background(), "   \n\t "); !errors.Is(err, ErrBlankMessage) {
		t.Fatalf("expected ErrBlankMessage, got %v", err)
	}
	if len(m.Transcript()) != 1 {
		t.Fatal("blank send must not touch the transcript")
	}
}

func TestSendFailureIsRecoverable(t *testing.T) {
	fail := true
	m := startedMachine(t, func(ctx context.Context, id string, text string) (Reply, error) {
		if fail {
			return Reply{}, errors.New("gateway error")
		}
		return Reply{Role: RoleAssistant, Content: "Got it."}, nil
	})

	if _, err := m.Send(context.Background(), "first try"); err == nil {
		t.Fatal("expected send error")
	}
	if m.State() != StateErrored {
		t.Fatalf("expected errored, got %s", m.State())
	}
	if !m.CanSend() {
		t.Fatal("mid-conversation send failure must stay sendable")
	}
	if len(m.Transcript()) != 1 {
		t.Fatalf("failed send must roll back the optimistic user message, got %+v", m.Transcript())
	}

	fail = false
	if _, err := m.Send(context.Background(), "second try"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if m.State() != StateInProgress {
		t.Fatalf("expected in_progress after recovery, got %s", m.State())
	}
	if m.Err() != nil {
		t.Fatalf("expected error cleared after recovery, got %v", m.Err())
	}
}

func TestSendCompletionLocksMachine(t *testing.T) {
	m := startedMachine(t, func(ctx context.Context, id string, text string) (Reply, error) {
		return Reply{Role: RoleAssistant, Content: "Thank you for your time!", Complete: true}, nil
	})

	if _, err := m.Send(context.Background(), "that is everything"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", m.State())
	}
	if _, err := m.Send(context.Background(), "wait, one more"); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
}

func TestSendRejectsConcurrentSends(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	m := startedMachine(t, func(ctx context.Context, id string, text string) (Reply, error) {
		close(entered)
		<-release
		return Reply{Role: RoleAssistant, Content: "ok"}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := m.Send(context.Background(), "slow one")
		done <- err
	}()

	<-entered
	if _, err := m.Send(context.Background(), "impatient"); !errors.Is(err, ErrSendPending) {
		t.Fatalf("expected ErrSendPending while a send is in flight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
}

func TestSendBeforeStartRejected(t *testing.T) {
	m := NewMachine(&stubService{}, "sess-1")
	if _, err := m.Send(context.Background(), "hello"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}
