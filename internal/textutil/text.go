package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims surrounding whitespace and converts to Unicode NFC so
// visually identical names compare and hash equal.
func NormalizeText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return norm.NFC.String(value)
}

// IsURL reports whether value starts with an http:// or https:// scheme,
// compared case-insensitively.
func IsURL(value string) bool {
	return hasPrefixFold(value, "http://") || hasPrefixFold(value, "https://")
}

// IsInsecureURL reports whether value uses plain http.
func IsInsecureURL(value string) bool {
	return hasPrefixFold(value, "http://")
}

func hasPrefixFold(value, prefix string) bool {
	return len(value) >= len(prefix) && strings.EqualFold(value[:len(prefix)], prefix)
}

// SplitOnce splits value at the first occurrence of sep. The second result is
// empty and found is false when sep does not occur.
func SplitOnce(value, sep string) (head, tail string, found bool) {
	return strings.Cut(value, sep)
}
