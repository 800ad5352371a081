package utils

import (
	"regexp"
	"strings"
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var (
	mdHeadingRe    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	mdBoldRe       = regexp.MustCompile(`(\*\*|__)(.*?)(\*\*|__)`)
	mdItalicRe     = regexp.MustCompile(`([*_])(.*?)([*_])`)
	mdImageRe      = regexp.MustCompile(`!\[(.*?)\]\(.*?\)`)
	mdLinkRe       = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	mdBlockquoteRe = regexp.MustCompile(`(?m)^\s*>\s*`)
	mdBulletRe     = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	mdOrderedRe    = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	mdCodeRe       = regexp.MustCompile("`([^`]*)`")
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// StripMarkdown removes common markdown syntax and collapses whitespace,
// producing a single-line plain-text rendering suitable for previews.
func StripMarkdown(s string) string {
	s = mdImageRe.ReplaceAllString(s, "$1")
	s = mdLinkRe.ReplaceAllString(s, "$1")
	s = mdHeadingRe.ReplaceAllString(s, "")
	s = mdBoldRe.ReplaceAllString(s, "$2")
	s = mdItalicRe.ReplaceAllString(s, "$2")
	s = mdBlockquoteRe.ReplaceAllString(s, "")
	s = mdBulletRe.ReplaceAllString(s, "")
	s = mdOrderedRe.ReplaceAllString(s, "")
	s = mdCodeRe.ReplaceAllString(s, "$1")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
