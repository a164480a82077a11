package brief

import (
	"regexp"
	"strings"
)

var (
	sanitizeStrip      = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
	sanitizeWhitespace = regexp.MustCompile(`\s+`)
)

// SanitizeName turns a product name into the token used for folders and
// generated asset filenames: punctuation stripped, whitespace collapsed
// to single underscores, lowercased. Idempotent. Distinct names that
// differ only in case or punctuation collapse to the same token, and
// the later product overwrites the earlier one's output.
func SanitizeName(name string) string {
	out := sanitizeStrip.ReplaceAllString(name, "")
	out = sanitizeWhitespace.ReplaceAllString(strings.TrimSpace(out), "_")
	return strings.ToLower(out)
}
