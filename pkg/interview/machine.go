package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// State of the interview machine.
type State string

const (
	StateInitializing     State = "initializing"
	StateAwaitingGreeting State = "awaiting_greeting"
	StateInProgress       State = "in_progress"
	StateCompleted        State = "completed"
	StateErrored          State = "errored"
)

var (
	// ErrSendPending rejects a send while another is still in flight.
	ErrSendPending = errors.New("interview: a send is already in flight")
	// ErrBlankMessage rejects a message that is empty after trimming.
	ErrBlankMessage = errors.New("interview: message is blank")
	// ErrSessionCompleted rejects sends on a completed session.
	ErrSessionCompleted = errors.New("interview: session is completed")
	// ErrSessionClosed rejects sends after a terminal failure.
	ErrSessionClosed = errors.New("interview: session could not be loaded")
	// ErrNotStarted rejects sends before Start has finished.
	ErrNotStarted = errors.New("interview: session is still initializing")
)

// Machine drives one interview session against a Conversationalist. It owns
// the transcript for the lifetime of the view: messages are append-only, at
// most one send is in flight at a time, and a completed session accepts no
// further sends.
type Machine struct {
	svc       Conversationalist
	sessionID string

	mu          sync.Mutex
	state       State
	transcript  []Message
	pending     bool
	recoverable bool
	lastErr     error
}

// NewMachine returns a machine in the Initializing state. Call Start before
// sending.
func NewMachine(svc Conversationalist, sessionID string) *Machine {
	return &Machine{
		svc:       svc,
		sessionID: sessionID,
		state:     StateInitializing,
	}
}

// Start fetches the session and settles the machine into its opening state:
//
//   - fresh active session (no messages): an empty probe is sent to obtain
//     the opening greeting, which becomes the first assistant message
//   - active session with messages: resume with the existing transcript
//   - completed session: load the transcript and lock input permanently
//   - fetch or greeting failure: terminal error, the link may be invalid
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateInitializing {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	sess, err := m.svc.FetchSession(ctx, m.sessionID)
	if err != nil {
		return m.failTerminal(fmt.Errorf("interview link could not be opened: %w", err))
	}

	if sess.Status == StatusCompleted {
		m.mu.Lock()
		m.transcript = append(m.transcript, sess.Messages...)
		m.state = StateCompleted
		m.mu.Unlock()
		return nil
	}

	if len(sess.Messages) > 0 {
		m.mu.Lock()
		m.transcript = append(m.transcript, sess.Messages...)
		m.state = StateInProgress
		m.mu.Unlock()
		return nil
	}

	m.mu.Lock()
	m.state = StateAwaitingGreeting
	m.mu.Unlock()

	reply, err := m.svc.SendMessage(ctx, m.sessionID, "")
	if err != nil {
		return m.failTerminal(fmt.Errorf("interview could not be started: %w", err))
	}

	m.mu.Lock()
	m.transcript = append(m.transcript, Message{
		Role:      RoleAssistant,
		Content:   reply.Content,
		Timestamp: time.Now().UTC(),
	})
	m.state = StateInProgress
	m.mu.Unlock()
	return nil
}

// Send submits user text and appends the assistant's reply. The user message
// is appended optimistically before the network call and rolled back if the
// send fails, keeping the transcript strictly alternating. A failed send is
// recoverable: the machine surfaces the error but stays sendable. A reply
// with Complete set transitions to Completed, after which every send is
// rejected.
func (m *Machine) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	switch {
	case m.state == StateCompleted:
		m.mu.Unlock()
		return Message{}, ErrSessionCompleted
	case m.state == StateErrored && !m.recoverable:
		m.mu.Unlock()
		return Message{}, ErrSessionClosed
	case m.state == StateInitializing || m.state == StateAwaitingGreeting:
		m.mu.Unlock()
		return Message{}, ErrNotStarted
	case m.pending:
		m.mu.Unlock()
		return Message{}, ErrSendPending
	case text == "":
		m.mu.Unlock()
		return Message{}, ErrBlankMessage
	}
	m.pending = true
	m.transcript = append(m.transcript, Message{
		Role:      RoleUser,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
	m.mu.Unlock()

	reply, err := m.svc.SendMessage(ctx, m.sessionID, text)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = false

	if err != nil {
		m.transcript = m.transcript[:len(m.transcript)-1]
		m.state = StateErrored
		m.recoverable = true
		m.lastErr = fmt.Errorf("message could not be delivered: %w", err)
		return Message{}, m.lastErr
	}

	msg := Message{
		Role:      RoleAssistant,
		Content:   reply.Content,
		Timestamp: time.Now().UTC(),
	}
	m.transcript = append(m.transcript, msg)
	m.lastErr = nil

	if reply.Complete {
		m.state = StateCompleted
	} else {
		m.state = StateInProgress
	}
	return msg, nil
}

// State returns the current machine state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transcript returns a copy of the transcript so far.
func (m *Machine) Transcript() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// CanSend reports whether a send would currently be accepted, given
// non-blank text.
func (m *Machine) CanSend() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return false
	}
	return m.state == StateInProgress || (m.state == StateErrored && m.recoverable)
}

// Err returns the most recent surfaced error, or nil.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Machine) failTerminal(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateErrored
	m.recoverable = false
	m.lastErr = err
	return err
}
