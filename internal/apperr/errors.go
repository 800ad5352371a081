// Package apperr defines the error kinds shared across the indexing and
// retrieval pipeline.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageLocked means the vector store's on-disk data is held
	// exclusively by another process. Not retryable; the competing
	// process must be terminated first.
	ErrStorageLocked = errors.New("storage locked by another process")

	// ErrUnsupportedFormat marks a file whose extension is not eligible
	// for indexing. A skip condition, not a failure.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ExtractionError wraps a per-file content extraction failure.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ProviderError wraps a failure from the embedding or generation provider
// (quota, auth, network). Surfaced per file on the index path and per
// query on the retrieval path.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StoreError wraps a vector store operation failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
