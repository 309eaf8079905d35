package records

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SentenceCase upper-cases the first letter and lower-cases the rest.
// Hyphenated parts after the first are lowered entirely unless they are a
// single character, so "SINGLE-FAMILY" becomes "Single-family".
func SentenceCase(s string) string {
	if s == "" {
		return s
	}
	parts := strings.Split(s, "-")
	for i, part := range parts {
		if i == 0 || utf8.RuneCountInString(part) == 1 {
			parts[i] = capitalize(part)
			continue
		}
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, "-")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return strings.ToLower(s)
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// NormalizeAddress produces a canonical form of an address for matching.
func NormalizeAddress(addr string) string {
	addr = strings.ToUpper(strings.TrimSpace(addr))
	addr = strings.ReplaceAll(addr, ",", "")
	return strings.Join(strings.Fields(addr), " ")
}
