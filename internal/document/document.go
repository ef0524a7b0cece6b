package document

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// Reserved field names.
const (
	FieldName   = "__name__"
	FieldAvatar = "__avatar__"
	FieldAlias  = "__alias__"
	FieldFlag   = "__flag__"
)

// IsReserved reports whether key names a reserved field.
func IsReserved(key string) bool {
	switch key {
	case FieldName, FieldAvatar, FieldAlias, FieldFlag:
		return true
	}
	return false
}

// Kind classifies a field value.
type Kind int

const (
	KindString Kind = iota
	KindStringList
	KindOther
)

// Value is a field value. Str is set for KindString, List for KindStringList
// and Raw names the TOML type for KindOther.
type Value struct {
	Kind Kind
	Str  string
	List []string
	Raw  string
	// Skipped counts non-string array elements left out of List.
	Skipped int
}

// String builds a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// StringList builds a string-array value.
func StringList(items ...string) Value {
	return Value{Kind: KindStringList, List: append([]string(nil), items...)}
}

// TypeName describes the value type for diagnostics.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindString:
		return "string"
	case KindStringList:
		return "array"
	default:
		return strings.ToLower(v.Raw)
	}
}

// Field is one key/value pair inside a record.
type Field struct {
	Key   string
	Value Value
}

// Record is one top-level table. Malformed is non-empty when the entry is
// not a plain table and cannot be used as an artist.
type Record struct {
	Key       string
	Fields    []Field
	Malformed string
}

// Document is an ordered registry.
type Document struct {
	Records []Record
}

// Len returns the number of records.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Record returns the record with the given key.
func (d *Document) Record(key string) (*Record, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Records {
		if d.Records[i].Key == key {
			return &d.Records[i], true
		}
	}
	return nil, false
}

// Load reads and parses the registry at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return doc, nil
}

// DescribeError renders a parse error with its position and the offending
// line when the error carries them.
func DescribeError(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("line %d, column %d: %s\n%s", row, col, decodeErr.Error(), decodeErr.String())
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Parse decodes registry TOML, keeping record and field order.
func Parse(data []byte) (*Document, error) {
	// Full decode first: it rejects invalid TOML (including duplicate keys)
	// with positioned errors the expression walk does not produce.
	var probe map[string]any
	if err := toml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	b := &builder{index: make(map[string]int)}
	var p unstable.Parser
	p.Reset(data)
	for p.NextExpression() {
		b.expression(p.Expression())
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return &Document{Records: b.records}, nil
}

// section tracks where key/value expressions currently land.
type section int

const (
	sectionRoot section = iota
	sectionRecord
	sectionSkip
)

type builder struct {
	records []Record
	index   map[string]int
	current section
	record  int
}

func (b *builder) recordFor(key string) int {
	if idx, ok := b.index[key]; ok {
		return idx
	}
	b.records = append(b.records, Record{Key: key})
	idx := len(b.records) - 1
	b.index[key] = idx
	return idx
}

func (b *builder) addField(idx int, field Field) {
	b.records[idx].Fields = append(b.records[idx].Fields, field)
}

func (b *builder) expression(expr *unstable.Node) {
	switch expr.Kind {
	case unstable.Table:
		parts := keyParts(expr)
		idx := b.recordFor(parts[0])
		if len(parts) == 1 {
			b.current, b.record = sectionRecord, idx
			return
		}
		b.addField(idx, Field{Key: strings.Join(parts[1:], "."), Value: Value{Kind: KindOther, Raw: "table"}})
		b.current = sectionSkip
	case unstable.ArrayTable:
		parts := keyParts(expr)
		idx := b.recordFor(parts[0])
		if len(parts) == 1 {
			b.records[idx].Malformed = "array of tables"
		} else {
			b.addField(idx, Field{Key: strings.Join(parts[1:], "."), Value: Value{Kind: KindOther, Raw: "array of tables"}})
		}
		b.current = sectionSkip
	case unstable.KeyValue:
		b.keyValue(expr)
	}
}

func (b *builder) keyValue(expr *unstable.Node) {
	parts := keyParts(expr)
	value := expr.Value()
	switch b.current {
	case sectionSkip:
		return
	case sectionRecord:
		if len(parts) > 1 {
			b.addField(b.record, Field{Key: parts[0], Value: Value{Kind: KindOther, Raw: "table"}})
			return
		}
		b.addField(b.record, Field{Key: parts[0], Value: convert(value)})
	case sectionRoot:
		idx := b.recordFor(parts[0])
		switch {
		case len(parts) == 2:
			b.addField(idx, Field{Key: parts[1], Value: convert(value)})
		case len(parts) > 2:
			b.addField(idx, Field{Key: parts[1], Value: Value{Kind: KindOther, Raw: "table"}})
		case value.Kind == unstable.InlineTable:
			b.inlineTable(idx, value)
		default:
			b.records[idx].Malformed = "top-level " + strings.ToLower(value.Kind.String()) + " is not a table"
		}
	}
}

func (b *builder) inlineTable(idx int, table *unstable.Node) {
	it := table.Children()
	for it.Next() {
		child := it.Node()
		if child.Kind != unstable.KeyValue {
			continue
		}
		parts := keyParts(child)
		if len(parts) > 1 {
			b.addField(idx, Field{Key: parts[0], Value: Value{Kind: KindOther, Raw: "table"}})
			continue
		}
		b.addField(idx, Field{Key: parts[0], Value: convert(child.Value())})
	}
}

func keyParts(node *unstable.Node) []string {
	var parts []string
	it := node.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func convert(node *unstable.Node) Value {
	switch node.Kind {
	case unstable.String:
		return String(string(node.Data))
	case unstable.Array:
		v := Value{Kind: KindStringList}
		it := node.Children()
		for it.Next() {
			child := it.Node()
			switch child.Kind {
			case unstable.Comment:
			case unstable.String:
				v.List = append(v.List, string(child.Data))
			default:
				v.Skipped++
			}
		}
		return v
	case unstable.InlineTable:
		return Value{Kind: KindOther, Raw: "table"}
	default:
		return Value{Kind: KindOther, Raw: node.Kind.String()}
	}
}
