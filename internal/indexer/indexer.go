// Package indexer orchestrates vault indexing: extraction, note parsing,
// embedding, and vector store upserts, with per-file failure isolation.
package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sagemind/noteai/internal/embedding"
	"github.com/sagemind/noteai/internal/extract"
	"github.com/sagemind/noteai/internal/note"
	"github.com/sagemind/noteai/internal/noteid"
	"github.com/sagemind/noteai/internal/vectorstore"
)

// Indexer indexes vault files into the vector store.
type Indexer struct {
	vaultPath   string
	extractor   *extract.Extractor
	embedder    embedding.Embedder
	store       vectorstore.Store
	tracker     Tracker
	extensions  map[string]struct{}
	excludeDirs map[string]struct{}
	logger      *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for skip/error events.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// WithTracker substitutes the indexed-path tracker (e.g. a persisted one in
// tests or future variants).
func WithTracker(t Tracker) Option {
	return func(idx *Indexer) { idx.tracker = t }
}

// NewIndexer creates an indexer over the vault at vaultPath. extensions are
// the indexable file extensions (with leading dot); excludeDirs are
// directory names pruned from traversal at any depth.
func NewIndexer(
	vaultPath string,
	extractor *extract.Extractor,
	embedder embedding.Embedder,
	store vectorstore.Store,
	extensions []string,
	excludeDirs []string,
	opts ...Option,
) *Indexer {
	idx := &Indexer{
		vaultPath:   vaultPath,
		extractor:   extractor,
		embedder:    embedder,
		store:       store,
		tracker:     NewMemoryTracker(),
		extensions:  make(map[string]struct{}, len(extensions)),
		excludeDirs: make(map[string]struct{}, len(excludeDirs)),
		logger:      zap.NewNop(),
	}
	for _, ext := range extensions {
		idx.extensions[strings.ToLower(ext)] = struct{}{}
	}
	for _, dir := range excludeDirs {
		idx.excludeDirs[dir] = struct{}{}
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Tracker returns the indexed-path tracker.
func (idx *Indexer) Tracker() Tracker {
	return idx.tracker
}

// IndexFile extracts, parses, embeds, and upserts a single file. Files
// under excluded directories or with unsupported extensions are skipped
// silently (log only). Any failure in the chain is logged and swallowed so
// that one bad file never aborts a batch sweep.
func (idx *Indexer) IndexFile(ctx context.Context, path string) {
	if idx.underExcludedDir(path) {
		idx.logger.Debug("skipping excluded path", zap.String("path", path))
		return
	}
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := idx.extensions[ext]; !ok {
		idx.logger.Debug("skipping unsupported extension", zap.String("path", path))
		return
	}

	text, err := idx.extractor.Extract(path)
	if err != nil {
		idx.logger.Warn("extraction failed", zap.String("path", path), zap.Error(err))
		return
	}
	n := note.Parse(text, path)
	emb, err := idx.embedder.Embed(ctx, n.Content)
	if err != nil {
		idx.logger.Warn("embedding failed", zap.String("path", path), zap.Error(err))
		return
	}
	if err := idx.store.Upsert(ctx, n, emb); err != nil {
		idx.logger.Warn("store upsert failed", zap.String("path", path), zap.Error(err))
		return
	}
	idx.tracker.Add(path)
	idx.logger.Debug("file indexed", zap.String("path", path), zap.String("title", n.Title))
}

// RemoveFile removes a previously indexed path from the store. Untracked
// paths are a logged no-op. A store delete failure is logged but the
// tracker entry is still dropped: the file is gone from disk, and retrying
// its removal forever helps nobody.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) {
	if !idx.tracker.Has(path) {
		idx.logger.Warn("remove requested for non-indexed file", zap.String("path", path))
		return
	}
	if err := idx.store.Delete(ctx, noteid.ForPath(path)); err != nil {
		idx.logger.Warn("store delete failed", zap.String("path", path), zap.Error(err))
	}
	idx.tracker.Remove(path)
	idx.logger.Debug("file removed from index", zap.String("path", path))
}

// FullIndex clears the tracker and indexes every supported file under the
// vault root. This is the disaster-recovery path after a process restart
// (which empties the tracker) or a store wipe. Returns the number of files
// indexed.
func (idx *Indexer) FullIndex(ctx context.Context) (int, error) {
	if _, err := os.Stat(idx.vaultPath); err != nil {
		return 0, fmt.Errorf("vault path: %w", err)
	}
	idx.tracker.Clear()
	if err := idx.walk(ctx, false); err != nil {
		return idx.tracker.Len(), err
	}
	return idx.tracker.Len(), nil
}

// IncrementalIndex indexes supported files not already in the tracker.
// Membership is by path only: a file edited in place after indexing is not
// re-embedded until the next FullIndex. Returns the number of new files
// indexed.
func (idx *Indexer) IncrementalIndex(ctx context.Context) (int, error) {
	if _, err := os.Stat(idx.vaultPath); err != nil {
		return 0, fmt.Errorf("vault path: %w", err)
	}
	before := idx.tracker.Len()
	if err := idx.walk(ctx, true); err != nil {
		return idx.tracker.Len() - before, err
	}
	return idx.tracker.Len() - before, nil
}

// walk traverses the vault, pruning excluded directories before descending
// into them, and indexes each supported file. When onlyNew is set, paths
// already tracked are skipped.
func (idx *Indexer) walk(ctx context.Context, onlyNew bool) error {
	return filepath.WalkDir(idx.vaultPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			idx.logger.Warn("walk error", zap.String("path", path), zap.Error(walkErr))
			return nil
		}
		if d.IsDir() {
			if _, excluded := idx.excludeDirs[d.Name()]; excluded && path != idx.vaultPath {
				return fs.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := idx.extensions[ext]; !ok {
			return nil
		}
		if onlyNew && idx.tracker.Has(path) {
			return nil
		}
		idx.IndexFile(ctx, path)
		return nil
	})
}

// underExcludedDir reports whether any segment of path names an excluded
// directory.
func (idx *Indexer) underExcludedDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if _, ok := idx.excludeDirs[part]; ok {
			return true
		}
	}
	return false
}
