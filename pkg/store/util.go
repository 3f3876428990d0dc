package store

import (
	"context"
	"fmt"

	"github.com/chasm-hq/chasm/pkg/ai"
)

func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// GenerateEmbeddings embeds all inputs in chunks so a single oversized
// request cannot exhaust the provider's payload limit.
func GenerateEmbeddings(
	ctx context.Context,
	client ai.AgentAIClient,
	inputs [][]byte,
	chunkSize int,
) ([][]float32, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(inputs))
	err := ChunkRange(len(inputs), chunkSize, func(start, end int) error {
		chunk, err := client.GenerateEmbeddings(ctx, inputs[start:end])
		if err != nil {
			return fmt.Errorf("failed to embed inputs %d-%d: %w", start, end, err)
		}
		out = append(out, chunk...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
