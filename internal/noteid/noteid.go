// Package noteid derives stable note identifiers from file paths.
package noteid

import (
	"path/filepath"

	"github.com/google/uuid"
)

// namespace is the fixed UUID namespace for note IDs. Changing it orphans
// every previously stored record, so it is part of the on-disk contract.
var namespace = uuid.MustParse("f83a5e8f-7f6b-4e0c-8c5a-3f5d6a8e9c1b")

// ForPath returns a stable, deterministic ID for the given file path.
// The same path always yields the same ID (version-5 UUID over the cleaned
// path), which makes store upserts idempotent and lets callers delete by
// recomputing the ID from the path alone.
func ForPath(path string) string {
	return uuid.NewSHA1(namespace, []byte(filepath.Clean(path))).String()
}
