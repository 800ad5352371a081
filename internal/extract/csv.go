package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// extractCSV renders CSV records as tab-separated rows, matching the
// spreadsheet extractor's tabular text form.
func extractCSV(content []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse CSV: %w", err)
	}
	var b strings.Builder
	for _, record := range records {
		b.WriteString(strings.Join(record, "\t"))
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}
