// Package cli provides output formatting for the noteai CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sagemind/noteai/internal/vectorstore"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteSummaries writes the note listing to w in the given format.
func WriteSummaries(w io.Writer, summaries []vectorstore.Summary, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No notes indexed yet. Run 'noteai index' first.")
		return nil
	}
	for _, s := range summaries {
		if s.Preview != "" {
			fmt.Fprintf(w, "• %s — %s\n", s.Title, s.Preview)
		} else {
			fmt.Fprintf(w, "• %s\n", s.Title)
		}
	}
	return nil
}

// Status is the shape of the status command output.
type Status struct {
	Notes               int    `json:"notes"`
	VaultPath           string `json:"vault_path"`
	DatabasePath        string `json:"database_path"`
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	ChatModel           string `json:"chat_model"`
	APIKeySet           bool   `json:"api_key_set"`
}

// WriteStatus writes the index status to w in the given format.
func WriteStatus(w io.Writer, s Status, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintf(w, "notes:           %d\n", s.Notes)
	fmt.Fprintf(w, "vault_path:      %s\n", s.VaultPath)
	fmt.Fprintf(w, "database_path:   %s\n", s.DatabasePath)
	fmt.Fprintf(w, "embedding_model: %s (%d dims)\n", s.EmbeddingModel, s.EmbeddingDimensions)
	fmt.Fprintf(w, "chat_model:      %s\n", s.ChatModel)
	fmt.Fprintf(w, "api_key_set:     %t\n", s.APIKeySet)
	return nil
}
