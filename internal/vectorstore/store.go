// Package vectorstore provides the persistent similarity index for notes:
// upsert by stable ID, nearest-neighbor search, bulk listing, and full
// collection reset.
package vectorstore

import (
	"context"

	"github.com/sagemind/noteai/internal/note"
)

// SearchHit is a single similarity search result. Score is cosine
// similarity in [-1, 1]; callers usually threshold it in [0, 1].
type SearchHit struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	FilePath string  `json:"file_path"`
	Score    float64 `json:"score"`
}

// Summary is a listing entry: the note title plus a short plain-text preview.
type Summary struct {
	Title   string `json:"title"`
	Preview string `json:"preview"`
}

// Store is the persistent vector collection.
type Store interface {
	// Upsert writes or overwrites the record for n.FilePath. Idempotent:
	// the stable ID is derived from the path, so at most one record per
	// path ever exists.
	Upsert(ctx context.Context, n note.Note, embedding []float32) error

	// Search returns up to limit hits ordered by descending cosine
	// similarity, deduplicated by file path within the call.
	Search(ctx context.Context, query []float32, limit int) ([]SearchHit, error)

	// Delete removes the record with the given ID. Deleting an absent
	// record is not an error.
	Delete(ctx context.Context, id string) error

	// ListAll returns a summary for every stored note.
	ListAll(ctx context.Context) ([]Summary, error)

	// Count returns the number of stored notes.
	Count(ctx context.Context) (int64, error)

	// Reset destructively drops all records and recreates an empty,
	// schema-valid collection. Atomic: on failure the prior state remains.
	Reset(ctx context.Context) error

	Close() error
}
