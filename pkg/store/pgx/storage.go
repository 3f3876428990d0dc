package pgx

import (
	"context"
	"sync"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
}

// GraphDBStorage implements the store.GraphStorage interface on PostgreSQL
// with pgvector for insight similarity search. Writes are serialized with a
// mutex so concurrent research runs cannot interleave partial graph saves.
type GraphDBStorage struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

// NewGraphDBStorage creates a GraphDBStorage on an existing connection or
// pool. The connection must have pgvector types registered.
func NewGraphDBStorage(conn pgxIConn) *GraphDBStorage {
	return &GraphDBStorage{conn: conn}
}

// SessionDBStorage implements the store.SessionStorage interface on
// PostgreSQL. Transcripts are stored as a JSONB message array per session.
type SessionDBStorage struct {
	conn pgxIConn
}

// NewSessionDBStorage creates a SessionDBStorage on an existing connection
// or pool.
func NewSessionDBStorage(conn pgxIConn) *SessionDBStorage {
	return &SessionDBStorage{conn: conn}
}
