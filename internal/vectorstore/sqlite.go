package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/sagemind/noteai/internal/apperr"
	"github.com/sagemind/noteai/internal/note"
	"github.com/sagemind/noteai/internal/noteid"
	"github.com/sagemind/noteai/pkg/utils"
)

// previewChars is the character budget for listing previews.
const previewChars = 100

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT,
	file_path TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	embedding BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS collection_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore implements Store on a single-process-exclusive SQLite file.
// Vector dimensionality and the cosine metric are fixed at creation and
// recorded in collection_meta. Similarity search is a brute-force cosine
// scan over the embedding BLOBs, which is adequate at vault scale.
type SQLiteStore struct {
	db         *sql.DB
	dimensions int
}

// NewSQLiteStore opens or creates the store at dbPath with the given vector
// dimensionality. The database is held with an exclusive lock for the life
// of the process; if another process already holds it, the returned error
// wraps apperr.ErrStorageLocked so callers can tell the user to terminate
// the competing process instead of retrying.
func NewSQLiteStore(dbPath string, dimensions int) (*SQLiteStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	// busy_timeout=0 makes a held lock fail fast instead of blocking, so
	// the locked condition is detectable at construction.
	dsn := fmt.Sprintf("file:%s?_locking_mode=EXCLUSIVE&_busy_timeout=0", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection holds the exclusive lock for the process lifetime.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, dimensions: dimensions}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// init creates the schema and validates the recorded dimensionality
// against the requested one. The metric write runs on every open so the
// exclusive lock is acquired at construction, not lazily at first upsert.
func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return lockedOr(err, "initialize schema")
	}
	if _, err := s.db.Exec(
		`INSERT INTO collection_meta (key, value) VALUES ('metric', 'cosine')
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	); err != nil {
		return lockedOr(err, "acquire storage lock")
	}
	var stored string
	err := s.db.QueryRow(
		`SELECT value FROM collection_meta WHERE key = 'dimensions'`,
	).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec(
			`INSERT INTO collection_meta (key, value) VALUES ('dimensions', ?)`,
			fmt.Sprint(s.dimensions),
		); err != nil {
			return lockedOr(err, "record collection meta")
		}
	case err != nil:
		return lockedOr(err, "read collection meta")
	case stored != fmt.Sprint(s.dimensions):
		return fmt.Errorf("collection has dimensions %s, want %d", stored, s.dimensions)
	}
	return nil
}

// lockedOr maps SQLite busy/locked errors to apperr.ErrStorageLocked and
// wraps anything else with the operation name.
func lockedOr(err error, op string) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) &&
		(sqlErr.Code == sqlite3.ErrBusy || sqlErr.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%s: %w", op, apperr.ErrStorageLocked)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Upsert writes or overwrites the record for n.FilePath.
func (s *SQLiteStore) Upsert(ctx context.Context, n note.Note, embedding []float32) error {
	if len(embedding) != s.dimensions {
		return &apperr.StoreError{
			Op:  "upsert",
			Err: fmt.Errorf("embedding dimension %d, want %d", len(embedding), s.dimensions),
		}
	}
	tagsJSON, err := json.Marshal(n.Tags)
	if err != nil {
		return &apperr.StoreError{Op: "upsert", Err: err}
	}
	id := noteid.ForPath(n.FilePath)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, tags, file_path, created_at, updated_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			tags = excluded.tags,
			file_path = excluded.file_path,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			embedding = excluded.embedding`,
		id, n.Title, n.Content, string(tagsJSON), n.FilePath,
		n.CreatedAt, n.UpdatedAt, encodeVector(embedding),
	)
	if err != nil {
		return &apperr.StoreError{Op: "upsert", Err: err}
	}
	return nil
}

// Search scans all records, scores them by cosine similarity against
// query, and returns the top hits deduplicated by file path.
func (s *SQLiteStore) Search(ctx context.Context, query []float32, limit int) ([]SearchHit, error) {
	if len(query) != s.dimensions {
		return nil, &apperr.StoreError{
			Op:  "search",
			Err: fmt.Errorf("query dimension %d, want %d", len(query), s.dimensions),
		}
	}
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, content, file_path, embedding FROM notes`)
	if err != nil {
		return nil, &apperr.StoreError{Op: "search", Err: err}
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var (
			hit  SearchHit
			blob []byte
		)
		if err := rows.Scan(&hit.Title, &hit.Content, &hit.FilePath, &blob); err != nil {
			return nil, &apperr.StoreError{Op: "search", Err: err}
		}
		hit.Score = cosineSimilarity(query, decodeVector(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.StoreError{Op: "search", Err: err}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	// The metric alone does not guarantee one hit per document; keep the
	// highest-ranked occurrence of each path.
	seen := make(map[string]bool, len(hits))
	deduped := hits[:0]
	for _, h := range hits {
		if seen[h.FilePath] {
			continue
		}
		seen[h.FilePath] = true
		deduped = append(deduped, h)
		if len(deduped) == limit {
			break
		}
	}
	return deduped, nil
}

// Delete removes a record by ID. Absent records are not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return &apperr.StoreError{Op: "delete", Err: err}
	}
	return nil
}

// ListAll returns a title and short preview for every stored note.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, content FROM notes ORDER BY title`)
	if err != nil {
		return nil, &apperr.StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var title, content string
		if err := rows.Scan(&title, &content); err != nil {
			return nil, &apperr.StoreError{Op: "list", Err: err}
		}
		summaries = append(summaries, Summary{
			Title:   title,
			Preview: buildPreview(title, content),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.StoreError{Op: "list", Err: err}
	}
	return summaries, nil
}

// buildPreview strips markdown, removes a duplicated leading title, and
// truncates to the preview budget.
func buildPreview(title, content string) string {
	preview := utils.StripMarkdown(content)
	if title != "" && strings.HasPrefix(strings.ToLower(preview), strings.ToLower(title)) {
		preview = strings.TrimSpace(preview[len(title):])
		preview = strings.TrimSpace(strings.TrimLeft(preview, "#"))
	}
	return utils.Truncate(preview, previewChars)
}

// Count returns the number of stored notes.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, &apperr.StoreError{Op: "count", Err: err}
	}
	return n, nil
}

// Reset drops all records and recreates the empty collection inside one
// transaction, so a failure leaves the prior state intact.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &apperr.StoreError{Op: "reset", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE notes`); err != nil {
		return &apperr.StoreError{Op: "reset", Err: err}
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return &apperr.StoreError{Op: "reset", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &apperr.StoreError{Op: "reset", Err: err}
	}
	return nil
}

// Close releases the database and its exclusive lock.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
