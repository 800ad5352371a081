package extract

import "strings"

// extractPlain decodes content as UTF-8 text. Invalid sequences are
// replaced with the replacement character, never reported as errors.
func extractPlain(content []byte) string {
	return strings.ToValidUTF8(string(content), "�")
}
