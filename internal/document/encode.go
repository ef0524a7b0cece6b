package document

import (
	"bytes"
	"fmt"
	"strings"

	"artistdb/internal/fileutil"
)

// Encode renders doc as TOML. Output is deterministic: records and fields are
// written in document order, malformed records and KindOther values are
// omitted, and records are separated by one blank line.
func Encode(doc *Document) []byte {
	var buf bytes.Buffer
	if doc == nil {
		return nil
	}
	first := true
	for _, rec := range doc.Records {
		if rec.Malformed != "" {
			continue
		}
		if !first {
			buf.WriteByte('\n')
		}
		first = false
		buf.WriteByte('[')
		buf.WriteString(quoteKey(rec.Key))
		buf.WriteString("]\n")
		for _, f := range rec.Fields {
			switch f.Value.Kind {
			case KindString:
				fmt.Fprintf(&buf, "%s = %s\n", quoteKey(f.Key), quoteString(f.Value.Str))
			case KindStringList:
				items := make([]string, len(f.Value.List))
				for i, item := range f.Value.List {
					items[i] = quoteString(item)
				}
				fmt.Fprintf(&buf, "%s = [%s]\n", quoteKey(f.Key), strings.Join(items, ", "))
			}
		}
	}
	return buf.Bytes()
}

// WriteFile atomically replaces path with the encoded document.
func WriteFile(path string, doc *Document) error {
	if err := fileutil.WriteFileAtomic(path, Encode(doc), 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

func quoteKey(key string) string {
	if isBareKey(key) {
		return key
	}
	return quoteString(key)
}

// quoteString renders s as a TOML basic string.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
