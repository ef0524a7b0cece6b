package fingerprint

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"artistdb/internal/document"
	"artistdb/internal/registry"
)

// Fingerprint identifies content.
type Fingerprint uint64

// Zero means unknown or invalid.
const Zero Fingerprint = 0

// Valid reports whether f is a real fingerprint.
func (f Fingerprint) Valid() bool { return f != Zero }

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// Parse reads the String form back.
func Parse(s string) (Fingerprint, error) {
	if s == "" {
		return Zero, nil
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return Zero, fmt.Errorf("parse fingerprint %q: %w", s, err)
	}
	return Fingerprint(v), nil
}

type hasher struct {
	d   *xxhash.Digest
	buf [binary.MaxVarintLen64]byte
}

func newHasher() *hasher { return &hasher{d: xxhash.New()} }

func (h *hasher) uint(tag byte, v uint64) {
	_, _ = h.d.Write([]byte{tag})
	n := binary.PutUvarint(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:n])
}

func (h *hasher) str(tag byte, s string) {
	h.uint(tag, uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

func (h *hasher) sum() Fingerprint {
	v := Fingerprint(h.d.Sum64())
	if v == Zero {
		return 1
	}
	return v
}

// OfRegistry fingerprints the published content of reg.
func OfRegistry(reg *registry.Registry) Fingerprint {
	if reg.Len() == 0 {
		return Zero
	}
	h := newHasher()
	for _, a := range reg.Artists() {
		h.str('A', a.Username)
		h.str('N', a.DisplayName)
		h.str('F', a.Flag)
		h.str('V', a.Avatar)
		h.uint('L', uint64(len(a.Aliases)))
		for _, alias := range a.Aliases {
			h.str('a', alias)
		}
		h.uint('S', uint64(len(a.Socials)))
		for _, s := range a.Socials {
			h.str('c', s.Code())
			h.str('d', s.Description)
			h.str('u', s.ProfileURL)
		}
	}
	return h.sum()
}

// OfDocument fingerprints a registry document as authored, in order.
func OfDocument(doc *document.Document) Fingerprint {
	if doc.Len() == 0 {
		return Zero
	}
	h := newHasher()
	for _, rec := range doc.Records {
		h.str('R', rec.Key)
		h.str('M', rec.Malformed)
		h.uint('L', uint64(len(rec.Fields)))
		for _, f := range rec.Fields {
			h.str('K', f.Key)
			h.uint('T', uint64(f.Value.Kind))
			switch f.Value.Kind {
			case document.KindString:
				h.str('s', f.Value.Str)
			case document.KindStringList:
				h.uint('n', uint64(len(f.Value.List)))
				for _, item := range f.Value.List {
					h.str('i', item)
				}
				h.uint('x', uint64(f.Value.Skipped))
			default:
				h.str('o', f.Value.Raw)
			}
		}
	}
	return h.sum()
}
