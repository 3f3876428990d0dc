package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chasm-hq/chasm/pkg/interview"
	"github.com/chasm-hq/chasm/pkg/store"
	pgxv5 "github.com/jackc/pgx/v5"
)

// CreateSession inserts a new interview session row.
func (s *SessionDBStorage) CreateSession(ctx context.Context, sess interview.Session) error {
	messages, err := encodeMessages(sess.Messages)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO interview_sessions (id, status, messages, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		sess.ID,
		string(sess.Status),
		messages,
		sess.CreatedAt,
		sess.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to create session %s: %w", sess.ID, err)
	}
	return nil
}

// GetSession returns the session with the given id, or store.ErrNotFound.
func (s *SessionDBStorage) GetSession(ctx context.Context, id string) (interview.Session, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, status, messages, created_at, completed_at
		FROM interview_sessions
		WHERE id = $1`,
		id)

	sess, err := scanSession(row)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return interview.Session{}, store.ErrNotFound
	}
	return sess, err
}

// SaveSession overwrites the stored state of an existing session.
func (s *SessionDBStorage) SaveSession(ctx context.Context, sess interview.Session) error {
	messages, err := encodeMessages(sess.Messages)
	if err != nil {
		return err
	}
	tag, err := s.conn.Exec(ctx, `
		UPDATE interview_sessions
		SET status = $2, messages = $3, completed_at = $4
		WHERE id = $1`,
		sess.ID,
		string(sess.Status),
		messages,
		sess.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListSessions returns all sessions, newest first.
func (s *SessionDBStorage) ListSessions(ctx context.Context) ([]interview.Session, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, status, messages, created_at, completed_at
		FROM interview_sessions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []interview.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(row pgxv5.Row) (interview.Session, error) {
	var (
		sess     interview.Session
		status   string
		messages []byte
	)
	if err := row.Scan(&sess.ID, &status, &messages, &sess.CreatedAt, &sess.CompletedAt); err != nil {
		return interview.Session{}, err
	}
	sess.Status = interview.Status(status)
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &sess.Messages); err != nil {
			return interview.Session{}, fmt.Errorf("failed to decode transcript of session %s: %w", sess.ID, err)
		}
	}
	return sess, nil
}

func encodeMessages(messages []interview.Message) ([]byte, error) {
	if len(messages) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(messages)
}
