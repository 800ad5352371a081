package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// extractHTML strips markup and returns the visible text. Script and style
// bodies are skipped. The tokenizer tolerates malformed markup, so this
// never fails on bad input; a truncated document yields whatever text was
// seen before the parse stopped.
func extractHTML(content []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(content))
	var (
		parts []string
		skip  int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " "), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if text := strings.TrimSpace(string(z.Text())); text != "" {
				parts = append(parts, text)
			}
		}
	}
}
