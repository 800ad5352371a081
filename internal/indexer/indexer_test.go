package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagemind/noteai/internal/config"
	"github.com/sagemind/noteai/internal/embedding"
	"github.com/sagemind/noteai/internal/extract"
	"github.com/sagemind/noteai/internal/note"
	"github.com/sagemind/noteai/internal/vectorstore"
)

func testIndexer(t *testing.T, vault string) (*Indexer, vectorstore.Store) {
	t.Helper()
	store, err := vectorstore.NewSQLiteStore(filepath.Join(t.TempDir(), "notes.db"), 8)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	idx := NewIndexer(
		vault,
		extract.NewExtractor(),
		embedding.NewMockEmbedder(8),
		store,
		config.DefaultExtensions,
		config.DefaultExcludeDirs,
	)
	return idx, store
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestFullIndex_vaultScenario(t *testing.T) {
	vault := t.TempDir()
	writeFile(t, filepath.Join(vault, "a.md"), "# Alpha\ncontent A")
	writeFile(t, filepath.Join(vault, "b.txt"), "plain B")
	writeFile(t, filepath.Join(vault, ".obsidian", "config.json"), `{"theme":"dark"}`)

	idx, store := testIndexer(t, vault)
	ctx := context.Background()

	n, err := idx.FullIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("indexed %d files, want 2", n)
	}

	summaries, err := store.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	titles := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		titles[s.Title] = true
	}
	if !titles["Alpha"] || !titles["b"] {
		t.Errorf("titles = %v, want Alpha and b", titles)
	}
	if idx.Tracker().Has(filepath.Join(vault, ".obsidian", "config.json")) {
		t.Error("excluded directory content was indexed")
	}
}

func TestFullIndex_prunesNestedExcludedDirs(t *testing.T) {
	vault := t.TempDir()
	writeFile(t, filepath.Join(vault, "keep.md"), "keep")
	writeFile(t, filepath.Join(vault, "sub", ".obsidian", "nested.md"), "hidden")
	writeFile(t, filepath.Join(vault, "sub", "also.md"), "also kept")

	idx, _ := testIndexer(t, vault)
	n, err := idx.FullIndex(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("indexed %d files, want 2", n)
	}
}

func TestFullIndex_missingVault(t *testing.T) {
	idx, _ := testIndexer(t, filepath.Join(t.TempDir(), "absent"))
	if _, err := idx.FullIndex(context.Background()); err == nil {
		t.Error("expected error for missing vault path")
	}
}

func TestIncrementalIndex_secondRunIndexesNothing(t *testing.T) {
	vault := t.TempDir()
	writeFile(t, filepath.Join(vault, "one.md"), "one")
	writeFile(t, filepath.Join(vault, "two.txt"), "two")

	idx, _ := testIndexer(t, vault)
	ctx := context.Background()

	first, err := idx.IncrementalIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != 2 {
		t.Errorf("first run indexed %d, want 2", first)
	}
	second, err := idx.IncrementalIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second != 0 {
		t.Errorf("second run indexed %d, want 0", second)
	}
}

func TestIncrementalIndex_afterFullIndexesNothing(t *testing.T) {
	vault := t.TempDir()
	writeFile(t, filepath.Join(vault, "one.md"), "one")

	idx, _ := testIndexer(t, vault)
	ctx := context.Background()
	if _, err := idx.FullIndex(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := idx.IncrementalIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("incremental after full indexed %d, want 0", n)
	}
}

func TestIncrementalIndex_picksUpNewFilesOnly(t *testing.T) {
	vault := t.TempDir()
	writeFile(t, filepath.Join(vault, "old.md"), "old")

	idx, _ := testIndexer(t, vault)
	ctx := context.Background()
	if _, err := idx.FullIndex(ctx); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(vault, "new.md"), "new")
	n, err := idx.IncrementalIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("indexed %d, want 1 new file", n)
	}
}

func TestIncrementalIndex_editedFileNotReembedded(t *testing.T) {
	vault := t.TempDir()
	path := filepath.Join(vault, "edit.md")
	writeFile(t, path, "original body")

	idx, store := testIndexer(t, vault)
	ctx := context.Background()
	if _, err := idx.FullIndex(ctx); err != nil {
		t.Fatal(err)
	}

	// Membership tracking is path-only: an in-place edit is invisible to
	// the incremental sweep until the next full reindex.
	writeFile(t, path, "edited body")
	if _, err := idx.IncrementalIndex(ctx); err != nil {
		t.Fatal(err)
	}
	summaries, err := store.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].Preview != "original body" {
		t.Errorf("summaries = %+v, expected stale original content", summaries)
	}

	if _, err := idx.FullIndex(ctx); err != nil {
		t.Fatal(err)
	}
	summaries, _ = store.ListAll(ctx)
	if len(summaries) != 1 || summaries[0].Preview != "edited body" {
		t.Errorf("summaries = %+v, full reindex should pick up the edit", summaries)
	}
}

func TestIndexFile_badFileDoesNotAbortBatch(t *testing.T) {
	vault := t.TempDir()
	writeFile(t, filepath.Join(vault, "good.md"), "good content")
	// Supported extension, invalid content: extraction fails per file.
	writeFile(t, filepath.Join(vault, "broken.docx"), "not a zip archive")

	idx, store := testIndexer(t, vault)
	ctx := context.Background()
	n, err := idx.FullIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("indexed %d, want 1 (broken file skipped)", n)
	}
	count, _ := store.Count(ctx)
	if count != 1 {
		t.Errorf("store count = %d", count)
	}
}

func TestIndexFile_unsupportedExtensionSkipped(t *testing.T) {
	vault := t.TempDir()
	path := filepath.Join(vault, "image.png")
	writeFile(t, path, "binary")

	idx, _ := testIndexer(t, vault)
	idx.IndexFile(context.Background(), path)
	if idx.Tracker().Has(path) {
		t.Error("unsupported extension was tracked")
	}
}

func TestIndexFile_excludedPathSkipped(t *testing.T) {
	vault := t.TempDir()
	path := filepath.Join(vault, ".obsidian", "plugin.md")
	writeFile(t, path, "config note")

	idx, _ := testIndexer(t, vault)
	idx.IndexFile(context.Background(), path)
	if idx.Tracker().Has(path) {
		t.Error("excluded path was tracked")
	}
}

func TestRemoveFile(t *testing.T) {
	vault := t.TempDir()
	path := filepath.Join(vault, "doomed.md")
	writeFile(t, path, "to be removed")

	idx, store := testIndexer(t, vault)
	ctx := context.Background()
	idx.IndexFile(ctx, path)
	if !idx.Tracker().Has(path) {
		t.Fatal("file not tracked after index")
	}

	idx.RemoveFile(ctx, path)
	if idx.Tracker().Has(path) {
		t.Error("path still tracked after removal")
	}
	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("store count = %d after removal", count)
	}
}

func TestRemoveFile_untrackedIsNoop(t *testing.T) {
	idx, store := testIndexer(t, t.TempDir())
	ctx := context.Background()

	// Must not panic or error; nothing tracked, nothing stored.
	idx.RemoveFile(ctx, "/vault/never-indexed.md")
	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("store count = %d", count)
	}
}

// failingDeleteStore wraps a Store and fails all deletes.
type failingDeleteStore struct {
	vectorstore.Store
}

func (f *failingDeleteStore) Delete(ctx context.Context, id string) error {
	return errors.New("delete unavailable")
}

func TestRemoveFile_trackerDroppedEvenWhenDeleteFails(t *testing.T) {
	vault := t.TempDir()
	path := filepath.Join(vault, "note.md")
	writeFile(t, path, "content")

	inner, err := vectorstore.NewSQLiteStore(filepath.Join(t.TempDir(), "notes.db"), 8)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = inner.Close() })

	idx := NewIndexer(
		vault,
		extract.NewExtractor(),
		embedding.NewMockEmbedder(8),
		&failingDeleteStore{Store: inner},
		config.DefaultExtensions,
		config.DefaultExcludeDirs,
	)
	ctx := context.Background()
	idx.IndexFile(ctx, path)

	idx.RemoveFile(ctx, path)
	if idx.Tracker().Has(path) {
		t.Error("tracker entry must be dropped even when the store delete fails")
	}
}

func TestIndexFile_parsesNoteFields(t *testing.T) {
	vault := t.TempDir()
	path := filepath.Join(vault, "meta.md")
	writeFile(t, path, "---\ntitle: Custom\ntags: a, b\n---\nbody here")

	idx, store := testIndexer(t, vault)
	ctx := context.Background()
	idx.IndexFile(ctx, path)

	emb, err := embedding.NewMockEmbedder(8).Embed(ctx, note.Parse("---\ntitle: Custom\ntags: a, b\n---\nbody here", path).Content)
	if err != nil {
		t.Fatal(err)
	}
	hits, err := store.Search(ctx, emb, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Title != "Custom" || hits[0].Content != "body here" {
		t.Errorf("hits = %+v", hits)
	}
}
