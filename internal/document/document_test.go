package document_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"artistdb/internal/document"
)

const sample = `
[Alice]
__name__ = "Alice A."
__alias__ = ["ali", "Al"]
"telegram:Main" = "alice"
twitter = "alice_x"

[bob]
__avatar__ = "bob@github"
github = "bob"
fa = "bob"
`

func TestParseKeepsOrder(t *testing.T) {
	doc, err := document.Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", doc.Len())
	}
	alice := doc.Records[0]
	if alice.Key != "Alice" {
		t.Fatalf("first record = %q", alice.Key)
	}
	keys := make([]string, 0, len(alice.Fields))
	for _, f := range alice.Fields {
		keys = append(keys, f.Key)
	}
	if got := strings.Join(keys, ","); got != "__name__,__alias__,telegram:Main,twitter" {
		t.Fatalf("field order = %s", got)
	}
	if alias := alice.Fields[1].Value; alias.Kind != document.KindStringList || len(alias.List) != 2 || alias.List[1] != "Al" {
		t.Fatalf("alias value = %+v", alias)
	}
	bob, ok := doc.Record("bob")
	if !ok || len(bob.Fields) != 3 || bob.Fields[2].Key != "fa" {
		t.Fatalf("bob = %+v", bob)
	}
}

func TestParseOddShapes(t *testing.T) {
	input := `
carol = { __name__ = "Carol", github = "carol" }
stray = 5
dotted.github = "dot"

[dave]
__name__ = 42
__alias__ = ["ok", 7]
nested.key = "x"

[dave.sub]
ignored = "y"

[[erin]]
github = "erin"
`
	doc, err := document.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	carol, ok := doc.Record("carol")
	if !ok || carol.Malformed != "" || len(carol.Fields) != 2 || carol.Fields[1].Value.Str != "carol" {
		t.Fatalf("carol = %+v", carol)
	}
	stray, ok := doc.Record("stray")
	if !ok || stray.Malformed == "" {
		t.Fatalf("stray should be malformed: %+v", stray)
	}
	dotted, ok := doc.Record("dotted")
	if !ok || len(dotted.Fields) != 1 || dotted.Fields[0].Key != "github" || dotted.Fields[0].Value.Str != "dot" {
		t.Fatalf("dotted = %+v", dotted)
	}
	dave, ok := doc.Record("dave")
	if !ok {
		t.Fatal("dave missing")
	}
	if dave.Fields[0].Value.Kind != document.KindOther || dave.Fields[0].Value.TypeName() != "integer" {
		t.Fatalf("dave name = %+v", dave.Fields[0].Value)
	}
	if alias := dave.Fields[1].Value; len(alias.List) != 1 || alias.Skipped != 1 {
		t.Fatalf("dave alias = %+v", alias)
	}
	if dave.Fields[2].Key != "nested" || dave.Fields[2].Value.Kind != document.KindOther {
		t.Fatalf("dave nested = %+v", dave.Fields[2])
	}
	if len(dave.Fields) != 4 || dave.Fields[3].Key != "sub" {
		t.Fatalf("dave fields = %+v", dave.Fields)
	}
	erin, ok := doc.Record("erin")
	if !ok || erin.Malformed == "" || len(erin.Fields) != 0 {
		t.Fatalf("erin = %+v", erin)
	}
}

func TestParseRejectsInvalidTOML(t *testing.T) {
	_, err := document.Parse([]byte("[a]\nx = \"1\"\nx = \"2\"\n"))
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
	if msg := document.DescribeError(err); msg == "" {
		t.Fatal("expected description for duplicate key error")
	}
	_, err = document.Parse([]byte("[a\n"))
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if msg := document.DescribeError(err); !strings.Contains(msg, "line 1") {
		t.Fatalf("DescribeError = %q", msg)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	doc := &document.Document{Records: []document.Record{
		{Key: "alice", Fields: []document.Field{
			{Key: document.FieldName, Value: document.String("Alice \"A\"\n")},
			{Key: document.FieldAlias, Value: document.StringList("ali", "al")},
			{Key: "telegram:Main", Value: document.String("alice")},
			{Key: "bad", Value: document.Value{Kind: document.KindOther, Raw: "Integer"}},
		}},
		{Key: "broken", Malformed: "array of tables"},
		{Key: "__duplicated__Bob Smith", Fields: []document.Field{
			{Key: "linktr.ee", Value: document.String("bob\ttab")},
		}},
	}}
	encoded := document.Encode(doc)
	want := "[alice]\n" +
		"__name__ = \"Alice \\\"A\\\"\\n\"\n" +
		"__alias__ = [\"ali\", \"al\"]\n" +
		"\"telegram:Main\" = \"alice\"\n" +
		"\n" +
		"[\"__duplicated__Bob Smith\"]\n" +
		"\"linktr.ee\" = \"bob\\ttab\"\n"
	if string(encoded) != want {
		t.Fatalf("Encode mismatch:\n%s\nwant:\n%s", encoded, want)
	}

	parsed, err := document.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse(Encode): %v", err)
	}
	if parsed.Len() != 2 {
		t.Fatalf("expected 2 records after round trip, got %d", parsed.Len())
	}
	if got := parsed.Records[0].Fields[0].Value.Str; got != "Alice \"A\"\n" {
		t.Fatalf("name after round trip = %q", got)
	}
	if got := parsed.Records[1].Fields[0].Value.Str; got != "bob\ttab" {
		t.Fatalf("value after round trip = %q", got)
	}
}

func TestWriteFileAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artists.toml")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	doc := &document.Document{Records: []document.Record{{Key: "a", Fields: []document.Field{{Key: "github", Value: document.String("a")}}}}}
	if err := document.WriteFile(path, doc); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
	loaded, err := document.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 1 || loaded.Records[0].Fields[0].Value.Str != "a" {
		t.Fatalf("loaded = %+v", loaded)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := document.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
