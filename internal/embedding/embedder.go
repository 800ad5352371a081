// Package embedding provides the embedding provider boundary: remote
// OpenAI embeddings, a deterministic mock for tests, and an LRU cache.
package embedding

import "context"

// Embedder produces fixed-length vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
