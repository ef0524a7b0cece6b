package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"artistdb/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "artists.toml")
	if err := os.WriteFile(file, []byte("[a]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		pass bool
	}{
		{name: "file", path: file, pass: true},
		{name: "missing", path: filepath.Join(dir, "missing.toml")},
		{name: "directory", path: dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckFileReadable("registry", tt.path); got.Passed != tt.pass {
				t.Fatalf("Passed = %v, want %v (%s)", got.Passed, tt.pass, got.Detail)
			}
		})
	}
}

func TestCheckRegistryReportsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artists.toml")
	if err := os.WriteFile(path, []byte("[alice]\ngithub = \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckRegistry("Registry file", path)
	if result.Passed {
		t.Fatal("expected parse failure")
	}
	if !strings.Contains(result.Detail, "line") {
		t.Fatalf("expected positioned detail, got %q", result.Detail)
	}
}

func TestCheckOutputParent(t *testing.T) {
	base := t.TempDir()
	if got := CheckOutputParent("out", filepath.Join(base, "a", "b")); !got.Passed {
		t.Fatalf("creatable directory should pass: %s", got.Detail)
	}
	if got := CheckOutputParent("out", base); !got.Passed {
		t.Fatalf("existing directory should pass: %s", got.Detail)
	}

	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := CheckOutputParent("out", file); got.Passed {
		t.Fatal("a regular file is not an output directory")
	}
	if got := CheckOutputParent("out", filepath.Join(file, "child")); got.Passed {
		t.Fatal("cannot create a directory beneath a file")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMetricsTextfile())
	testsupport.WriteRegistry(t, cfg, testsupport.SampleRegistry)

	results := RunAll(cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}

	cfg.Publish.Codec = "xml"
	if !Failed(RunAll(cfg)) {
		t.Fatal("unknown codec should fail")
	}
	if RunAll(nil) != nil {
		t.Fatal("nil config should yield no results")
	}
}
