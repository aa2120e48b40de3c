package repositorycache

import (
	"strings"
	"unicode"
)

// toSnake converts an operation name such as "FetchByID" into the span name
// "fetch_by_id". Runs of punctuation or spaces collapse into one underscore
// and never lead or trail.
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	sep := false
	for i, r := range runes {
		var prev rune
		if i > 0 {
			prev = runes[i-1]
		}

		switch {
		case unicode.IsUpper(r):
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sep = true
			}
			r = unicode.ToLower(r)
		case unicode.IsDigit(r):
			if i > 0 && !unicode.IsDigit(prev) {
				sep = true
			}
		case unicode.IsLower(r):
		default:
			sep = true
			continue
		}

		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}

	return b.String()
}
