package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// wordDocumentPath is the main document body inside a .docx package.
const wordDocumentPath = "word/document.xml"

// wordTextRe matches <w:t> text nodes, with or without attributes.
var wordTextRe = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractWord extracts text from a Word document. DOCX is a zip archive
// holding OOXML; we take every <w:t> text node so content survives
// arbitrary run and paragraph attributes, and join paragraphs with
// newlines. Legacy binary .doc files are not zip archives and fail here,
// which the indexer treats as a per-file extraction failure.
func extractWord(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open Word document: %w", err)
	}
	var docXML string
	for _, f := range zr.File {
		if f.Name != wordDocumentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		docXML = string(data)
		break
	}
	if docXML == "" {
		return "", fmt.Errorf("%s not found", wordDocumentPath)
	}

	paragraphs := strings.Split(docXML, "</w:p>")
	var out []string
	for _, para := range paragraphs {
		var b strings.Builder
		for _, m := range wordTextRe.FindAllStringSubmatch(para, -1) {
			b.WriteString(m[1])
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, "\n"), nil
}
