package note

import "strings"

const frontMatterDelim = "---"

// splitFrontMatter separates a leading front-matter block (key: value lines
// between --- delimiter lines) from the body. If no well-formed block is
// present the entire input is body and the returned map is nil.
//
// This is deliberately a minimal line parser, not a YAML document parser:
// note front matter in the wild is a flat key/value header, and a full
// document parser would reject hand-written files over irrelevant syntax.
func splitFrontMatter(raw string) (map[string]string, string) {
	trimmed := strings.TrimLeft(raw, "\r\n")
	lines := strings.Split(trimmed, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != frontMatterDelim {
		return nil, raw
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == frontMatterDelim {
			end = i
			break
		}
	}
	if end < 0 {
		// No closing delimiter: treat everything as body.
		return nil, raw
	}

	meta := make(map[string]string)
	for _, line := range lines[1:end] {
		line = strings.TrimRight(line, "\r")
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		meta[key] = strings.TrimSpace(value)
	}

	body := strings.Join(lines[end+1:], "\n")
	return meta, body
}

// splitTags turns a comma-separated tag value into a clean slice.
// Surrounding brackets from list-style values ("[a, b]") are tolerated.
func splitTags(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	if value == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(value, ",") {
		tag := strings.Trim(strings.TrimSpace(part), `"'`)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
