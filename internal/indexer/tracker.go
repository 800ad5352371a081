package indexer

import "sync"

// Tracker records which file paths have been indexed in the current
// session. It is a deduplication cache, not a source of truth: the default
// implementation is process-local and starts empty on every restart, so a
// restart forgets incremental-indexing memory even though the vector store
// persists. Full reindex is the recovery path.
type Tracker interface {
	Add(path string)
	Has(path string) bool
	Remove(path string)
	Clear()
	Len() int
}

// MemoryTracker is the default in-memory Tracker.
type MemoryTracker struct {
	mu    sync.RWMutex
	paths map[string]struct{}
}

// NewMemoryTracker returns an empty tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{paths: make(map[string]struct{})}
}

func (t *MemoryTracker) Add(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths[path] = struct{}{}
}

func (t *MemoryTracker) Has(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.paths[path]
	return ok
}

func (t *MemoryTracker) Remove(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.paths, path)
}

func (t *MemoryTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = make(map[string]struct{})
}

func (t *MemoryTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.paths)
}
