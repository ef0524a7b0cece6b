package publish_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"artistdb/internal/codec"
	"artistdb/internal/diag"
	"artistdb/internal/publish"
	"artistdb/internal/registry"
	"artistdb/internal/testsupport"
)

func sampleRegistry() *registry.Registry {
	return registry.New([]*registry.Artist{
		{Username: "alice", DisplayName: "Alice", Aliases: []string{"ali", "ally"}},
		{Username: "bob", DisplayName: "Bob"},
	})
}

func TestPublishWritesArtifactsAndAliases(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	p := publish.New(dir, codec.JSON{}, publish.WithWorkers(2))

	stats, diags, err := p.Publish(context.Background(), sampleRegistry())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if stats.Artists != 2 || stats.Aliases != 2 || stats.Failures != 0 || stats.Written() != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	names := testsupport.ListDir(t, dir)
	if !reflect.DeepEqual(names, []string{"ali", "alice", "ally", "bob"}) {
		t.Fatalf("unexpected files: %v", names)
	}
	if got := testsupport.ReadFile(t, filepath.Join(dir, "ali")); got != "@alice" {
		t.Fatalf("alias file = %q", got)
	}
	if got := testsupport.ReadFile(t, filepath.Join(dir, "bob")); got != `{"name":"Bob","socials":[]}` {
		t.Fatalf("artifact = %q", got)
	}

	var total int64
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		total += info.Size()
	}
	if stats.Bytes != total {
		t.Fatalf("bytes = %d, files total %d", stats.Bytes, total)
	}
}

func TestPublishRecreateRemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "stale"), "old")

	if _, _, err := publish.New(dir, codec.JSON{}).Publish(context.Background(), sampleRegistry()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "stale")); err != nil {
		t.Fatalf("stale file should survive without recreate: %v", err)
	}

	if _, _, err := publish.New(dir, codec.JSON{}, publish.WithRecreate(true)).Publish(context.Background(), sampleRegistry()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "stale")); !os.IsNotExist(err) {
		t.Fatalf("stale file should be removed with recreate, err=%v", err)
	}
}

func TestPublishSkipsUnsafeNames(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New([]*registry.Artist{
		{Username: "..", DisplayName: "Dots"},
		{Username: "carol", Aliases: []string{"a/b"}},
	})

	stats, diags, err := publish.New(dir, codec.JSON{}).Publish(context.Background(), reg)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if stats.Artists != 1 || stats.Aliases != 0 || stats.Failures != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if got := diag.Filter(diags, diag.KindUnsafeName); len(got) != 2 {
		t.Fatalf("expected 2 unsafe_name diagnostics, got %v", diags)
	}
	if names := testsupport.ListDir(t, dir); !reflect.DeepEqual(names, []string{"carol"}) {
		t.Fatalf("unexpected files: %v", names)
	}
}

func TestPublishFailsWhenDirectoryUnusable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	testsupport.WriteFile(t, blocker, "x")

	_, _, err := publish.New(filepath.Join(blocker, "out"), codec.JSON{}).Publish(context.Background(), sampleRegistry())
	if err == nil {
		t.Fatal("expected error when output directory cannot be created")
	}
}

func TestPublishEmptyRegistryCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	stats, _, err := publish.New(dir, codec.Protobuf{}).Publish(context.Background(), registry.New(nil))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if stats.Written() != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected output directory, err=%v", err)
	}
}

func TestReadFollowsAliases(t *testing.T) {
	dir := t.TempDir()
	c := codec.Protobuf{}
	if _, _, err := publish.New(dir, c).Publish(context.Background(), sampleRegistry()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	username, art, err := publish.Read(dir, "ally", c)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if username != "alice" || art.Name != "Alice" || !reflect.DeepEqual(art.Alias, []string{"ali", "ally"}) {
		t.Fatalf("unexpected read: %s %+v", username, art)
	}

	if _, _, err := publish.Read(dir, "nobody", c); !errors.Is(err, publish.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := publish.Read(dir, "../etc", c); !errors.Is(err, publish.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unsafe name, got %v", err)
	}

	testsupport.WriteFile(t, filepath.Join(dir, "dangling"), "@ghost")
	if _, _, err := publish.Read(dir, "dangling", c); err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected dangling alias error, got %v", err)
	}
}
