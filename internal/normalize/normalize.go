// Package normalize turns free-text provider output into structured results.
//
// Parsing is a best-effort heuristic over delimiter-separated text; provider
// formatting drift is contained here.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// leadingMarker matches numbered-list prefixes such as "1. " or "2) ".
	leadingMarker = regexp.MustCompile(`^(\d+[.)]\s+)+`)
	// bareMarker matches a segment that is nothing but a list number.
	bareMarker = regexp.MustCompile(`^\d+[.)]?$`)
)

func isSeparator(r rune) bool {
	switch r {
	case ',', '\n', '•', '-', '*':
		return true
	default:
		return false
	}
}

// Keywords splits raw keyword output into an ordered list of entries.
// Empty input yields an empty, non-nil list.
func Keywords(raw string) []string {
	keywords := []string{}

	for _, segment := range strings.FieldsFunc(raw, isSeparator) {
		keyword := strings.TrimSpace(segment)
		keyword = strings.TrimSpace(leadingMarker.ReplaceAllString(keyword, ""))

		if keyword == "" || bareMarker.MatchString(keyword) {
			continue
		}

		keywords = append(keywords, keyword)
	}

	return keywords
}

// Progression trims surrounding whitespace. An empty result is valid.
func Progression(raw string) string {
	return strings.TrimSpace(raw)
}
