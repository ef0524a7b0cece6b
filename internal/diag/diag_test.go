package diag

import "testing"

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{"full", New(KindURLValue, "alice", "github", "replace with handle"), "url_value [alice.github]: replace with handle"},
		{"artist only", New(KindNoAvatar, "bob", "", ""), "no_avatar [bob]"},
		{"bare", Diagnostic{Kind: KindMalformedRecord}, "malformed_record"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountAndFilter(t *testing.T) {
	diags := []Diagnostic{
		New(KindAliasCollision, "a", "__alias__", "shared"),
		New(KindAliasCollision, "b", "__alias__", "shared"),
		New(KindNoAvatar, "c", "", "").WithLevel(LevelDebug),
	}
	counts := Count(diags)
	if counts[KindAliasCollision] != 2 || counts[KindNoAvatar] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if got := Filter(diags, KindAliasCollision); len(got) != 2 || got[1].Artist != "b" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if got := Filter(diags, KindUnsafeName); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if diags[2].Level != LevelDebug || diags[0].Level != LevelWarn {
		t.Fatal("levels not applied")
	}
	if hinted := diags[0].WithHint("rename"); hinted.Hint != "rename" || diags[0].Hint != "" {
		t.Fatal("WithHint must return a copy")
	}
}
