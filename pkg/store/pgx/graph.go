package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chasm-hq/chasm/pkg/knowledge"
	"github.com/chasm-hq/chasm/pkg/logger"
	"github.com/chasm-hq/chasm/pkg/store"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const (
	nodeChunk = 250
	linkChunk = 500
)

const upsertNodeSQL = `
INSERT INTO graph_nodes (id, name, node_type, sentiment, summary, source_type, embedding, attrs)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	node_type = EXCLUDED.node_type,
	sentiment = EXCLUDED.sentiment,
	summary = EXCLUDED.summary,
	source_type = EXCLUDED.source_type,
	embedding = EXCLUDED.embedding,
	attrs = EXCLUDED.attrs`

const upsertLinkSQL = `
INSERT INTO graph_links (source_id, target_id, relation, weight)
VALUES ($1, $2, $3, $4)
ON CONFLICT (source_id, target_id) DO UPDATE SET
	relation = EXCLUDED.relation,
	weight = EXCLUDED.weight`

// LoadGraph reads the full persisted graph. Nodes and links come back in a
// stable order so repeated loads normalize identically.
func (s *GraphDBStorage) LoadGraph(ctx context.Context) (knowledge.Payload, error) {
	var payload knowledge.Payload

	rows, err := s.conn.Query(ctx, `
		SELECT id, name, node_type, sentiment, summary, source_type, embedding, attrs
		FROM graph_nodes
		ORDER BY id`)
	if err != nil {
		return payload, fmt.Errorf("failed to load graph nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n        knowledge.Node
			nodeType string
			srcType  string
			emb      *pgvector.Vector
			attrs    []byte
		)
		if err := rows.Scan(&n.ID, &n.Name, &nodeType, &n.Sentiment, &n.Summary, &srcType, &emb, &attrs); err != nil {
			return payload, fmt.Errorf("failed to scan graph node: %w", err)
		}
		n.Type = knowledge.NodeType(nodeType)
		n.Source = knowledge.SourceType(srcType)
		if emb != nil {
			n.Embedding = emb.Slice()
		}
		if len(attrs) > 0 {
			m := map[string]json.RawMessage{}
			if err := json.Unmarshal(attrs, &m); err != nil {
				return payload, fmt.Errorf("failed to decode attrs of node %s: %w", n.ID, err)
			}
			if len(m) > 0 {
				n.Attrs = m
			}
		}
		payload.Nodes = append(payload.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return payload, err
	}

	linkRows, err := s.conn.Query(ctx, `
		SELECT source_id, target_id, relation, weight
		FROM graph_links
		ORDER BY source_id, target_id`)
	if err != nil {
		return payload, fmt.Errorf("failed to load graph links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var (
			sourceID string
			targetID string
			relation string
			weight   float64
		)
		if err := linkRows.Scan(&sourceID, &targetID, &relation, &weight); err != nil {
			return payload, fmt.Errorf("failed to scan graph link: %w", err)
		}
		payload.Links = append(payload.Links, knowledge.Link{
			Source:   knowledge.EndpointID(sourceID),
			Target:   knowledge.EndpointID(targetID),
			Relation: knowledge.Relation(relation),
			Weight:   weight,
		})
	}
	if err := linkRows.Err(); err != nil {
		return payload, err
	}

	return payload, nil
}

// SaveGraph upserts every node and link of the graph in chunked batches.
// Rows with keys absent from the graph are left untouched.
func (s *GraphDBStorage) SaveGraph(ctx context.Context, g *knowledge.Graph) error {
	if g == nil {
		return nil
	}
	nodes := g.Nodes()
	links := g.Links()
	if len(nodes) == 0 && len(links) == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = store.ChunkRange(len(nodes), nodeChunk, func(start, end int) error {
		logger.Debug("[Store][SaveGraph] Saving node chunk", "nodes", end-start)

		batch := &pgxv5.Batch{}
		for _, n := range nodes[start:end] {
			attrs, err := encodeAttrs(n.Attrs)
			if err != nil {
				return fmt.Errorf("failed to encode attrs of node %s: %w", n.ID, err)
			}
			batch.Queue(upsertNodeSQL,
				n.ID,
				n.Name,
				string(n.Type),
				n.Sentiment,
				n.Summary,
				string(n.Source),
				toVector(n.Embedding),
				attrs,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return err
	}

	err = store.ChunkRange(len(links), linkChunk, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for _, l := range links[start:end] {
			if l.Source.ID == "" || l.Target.ID == "" {
				continue
			}
			batch.Queue(upsertLinkSQL,
				l.Source.ID,
				l.Target.ID,
				string(l.Relation),
				l.Weight,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListProducts returns all persisted Product nodes, by name.
func (s *GraphDBStorage) ListProducts(ctx context.Context) ([]knowledge.Product, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, attrs
		FROM graph_nodes
		WHERE node_type = $1
		ORDER BY name`,
		string(knowledge.NodeProduct))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []knowledge.Product
	for rows.Next() {
		var (
			p     knowledge.Product
			attrs []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if len(attrs) > 0 {
			var extra struct {
				Description string `json:"description"`
				URL         string `json:"url"`
			}
			if err := json.Unmarshal(attrs, &extra); err == nil {
				p.Description = extra.Description
				p.URL = extra.URL
			}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindSimilarInsights returns ids of Insight nodes whose embeddings clear
// the cosine similarity threshold, most similar first.
func (s *GraphDBStorage) FindSimilarInsights(
	ctx context.Context,
	embedding []float32,
	topK int32,
	minSimilarity float64,
) ([]string, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id
		FROM graph_nodes
		WHERE node_type = $1
		  AND embedding IS NOT NULL
		  AND 1 - (embedding <=> $2) >= $3
		ORDER BY embedding <=> $2
		LIMIT $4`,
		string(knowledge.NodeInsight),
		pgvector.NewVector(embedding),
		minSimilarity,
		topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar insights: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func encodeAttrs(attrs map[string]json.RawMessage) ([]byte, error) {
	if len(attrs) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(attrs)
}

func toVector(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}
