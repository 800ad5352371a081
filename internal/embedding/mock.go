package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder is a deterministic embedder for tests. The vector is derived
// from a hash of the text, so equal texts always embed identically and
// different texts diverge.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder producing unit vectors of the given size.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a normalized, hash-derived embedding.
func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := float64(h.Sum64() % 100003)

	vec := make([]float32, e.dimensions)
	var sum float64
	for i := range vec {
		v := math.Sin(seed*float64(i+1)) + 0.01
		vec[i] = float32(v)
		sum += v * v
	}
	if sum > 0 {
		norm := float32(1 / math.Sqrt(sum))
		for i := range vec {
			vec[i] *= norm
		}
	}
	return vec, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}
