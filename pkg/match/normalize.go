package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize reduces a column name or rule pattern to the form used for
// semantic comparison: lower-cased, with underscores, whitespace and
// diacritical marks removed. "Date_Of Birth" and "dateofbirth" normalize
// to the same string.
func Normalize(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(name))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case r == '_':
		case unicode.IsSpace(r):
		case unicode.Is(unicode.Mn, r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// joinKeyIndicators mark exact-match columns that are likely join keys.
var joinKeyIndicators = []string{"id", "key", "number", "code", "identifier"}

// looksLikeJoinKey reports whether a lower-cased column name contains a
// join key indicator.
func looksLikeJoinKey(lowerName string) bool {
	for _, ind := range joinKeyIndicators {
		if strings.Contains(lowerName, ind) {
			return true
		}
	}
	return false
}

// unifiedIsJoinKey is the join key test applied to semantic rule output.
func unifiedIsJoinKey(unified string) bool {
	return strings.Contains(unified, "id") || strings.Contains(unified, "key")
}
