package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text trims s. Free text is stored as the user wrote it; clients escape
// it when rendering.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// Strip removes every HTML tag and unescapes entities. Used to build search
// index text, never to rewrite stored content.
func Strip(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Ptr applies Text to an optional field. Blank results become nil.
func Ptr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Text(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

// Slice trims every element and drops the empty ones.
func Slice(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if clean := Text(s); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
