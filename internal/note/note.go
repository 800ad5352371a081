// Package note defines the canonical in-memory representation of a vault
// document and its parsing from raw extracted text.
package note

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Note is a document's canonical representation. It is constructed once at
// index time and never mutated; re-indexing a path produces a fresh value.
type Note struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FilePath  string    `json:"file_path"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// tagsLineRe matches body lines that declare tags inline ("tags: a, b").
// Such lines are stripped from the content regardless of whether front
// matter already supplied tags.
var tagsLineRe = regexp.MustCompile(`^[Tt]ags:`)

// Parse builds a Note from raw extracted text. Front matter (when present)
// supplies title, tags, and timestamps; the body is cleaned of inline
// "tags:" lines. Title falls back to the first level-1 heading in the
// cleaned body, then to the file name stem. Timestamps default to the
// ingestion time when absent or unparseable. Parse never fails: malformed
// metadata degrades to defaults.
func Parse(raw, filePath string) Note {
	meta, body := splitFrontMatter(raw)

	var tags []string
	if v, ok := meta["tags"]; ok {
		tags = splitTags(v)
	}

	body = stripTagLines(body)

	title := meta["title"]
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		base := filepath.Base(filePath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	now := time.Now().UTC()
	return Note{
		Title:     title,
		Content:   body,
		FilePath:  filePath,
		Tags:      tags,
		CreatedAt: parseTimestamp(meta["created"], now),
		UpdatedAt: parseTimestamp(meta["updated"], now),
	}
}

// ToMarkdown serializes the note as a front-matter block followed by the
// body. It is used for export; arbitrary hand-written input is not
// guaranteed to round-trip byte-identically.
func (n Note) ToMarkdown() string {
	var b strings.Builder
	b.WriteString(frontMatterDelim + "\n")
	fmt.Fprintf(&b, "title: %s\n", n.Title)
	fmt.Fprintf(&b, "tags: %s\n", strings.Join(n.Tags, ", "))
	fmt.Fprintf(&b, "created: %s\n", n.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "updated: %s\n", n.UpdatedAt.Format(time.RFC3339))
	b.WriteString(frontMatterDelim + "\n\n")
	b.WriteString(n.Content)
	return b.String()
}

// fileNameRe keeps characters safe for a file name derived from a title.
var fileNameRe = regexp.MustCompile(`[^a-z0-9]+`)

// SuggestedFileName derives a vault-friendly file name from the note title,
// e.g. "Meeting Notes: Q3" -> "meeting-notes-q3.md".
func (n Note) SuggestedFileName() string {
	slug := fileNameRe.ReplaceAllString(strings.ToLower(n.Title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug + ".md"
}

// stripTagLines removes inline "tags:" declarations from the body.
func stripTagLines(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if tagsLineRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// firstHeading returns the text of the first markdown heading line,
// stripped of leading hash marks, or "" if the body has none.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}

// timestampLayouts are the accepted ISO-8601 shapes, most specific first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses an ISO-8601 value, falling back to def on absence
// or parse failure. Parse errors are intentionally swallowed: a malformed
// date in hand-written front matter must not fail the whole note.
func parseTimestamp(value string, def time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return def
}
