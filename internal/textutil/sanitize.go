package textutil

import "strings"

// SanitizeIdentifier maps a free-form string onto the identifier alphabet
// [a-z0-9_-]. ASCII letters are lowercased, digits, hyphens and underscores
// are kept, and every other rune becomes a single underscore. The result has
// exactly one byte per input rune; nothing is trimmed and empty input stays
// empty.
func SanitizeIdentifier(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// IsSafeFileName reports whether name can be used as a single path element.
func IsSafeFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
