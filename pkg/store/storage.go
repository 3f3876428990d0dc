package store

import (
	"context"
	"errors"

	"github.com/chasm-hq/chasm/pkg/interview"
	"github.com/chasm-hq/chasm/pkg/knowledge"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// GraphStorage persists the knowledge graph and answers vector similarity
// queries over insight embeddings.
type GraphStorage interface {
	// LoadGraph returns the full persisted graph as a raw payload ready for
	// normalization.
	LoadGraph(ctx context.Context) (knowledge.Payload, error)

	// SaveGraph upserts every node and link of the graph. Existing rows with
	// matching keys are overwritten; rows absent from the graph are left
	// untouched.
	SaveGraph(ctx context.Context, g *knowledge.Graph) error

	// ListProducts returns all persisted Product nodes.
	ListProducts(ctx context.Context) ([]knowledge.Product, error)

	// FindSimilarInsights returns ids of Insight nodes whose embeddings have
	// cosine similarity of at least minSimilarity with the query embedding,
	// most similar first.
	FindSimilarInsights(ctx context.Context, embedding []float32, topK int32, minSimilarity float64) ([]string, error)
}

// SessionStorage persists interview sessions and their transcripts.
type SessionStorage interface {
	CreateSession(ctx context.Context, s interview.Session) error
	GetSession(ctx context.Context, id string) (interview.Session, error)
	SaveSession(ctx context.Context, s interview.Session) error
	ListSessions(ctx context.Context) ([]interview.Session, error)
}
