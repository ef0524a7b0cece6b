package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"artistdb/internal/codec"
	"artistdb/internal/config"
	"artistdb/internal/diag"
	"artistdb/internal/metrics"
	"artistdb/internal/pipeline"
	"artistdb/internal/publish"
	"artistdb/internal/testsupport"
)

func newPipeline(t *testing.T, cfg *config.Config, opts ...pipeline.Option) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}

func run(t *testing.T, p *pipeline.Pipeline) pipeline.Result {
	t.Helper()
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestRunPublishesAndRewritesSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteRegistry(t, cfg, testsupport.SampleRegistry)
	p := newPipeline(t, cfg)

	res := run(t, p)
	if !res.Published || !res.Decision.ContentChanged || !res.Decision.NormalizationChanged {
		t.Fatalf("first run should publish and normalize: %+v", res.Decision)
	}
	if res.Stats.Artists != 2 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if !res.SourceRewritten {
		t.Fatal("expected source rewrite")
	}
	if res.BackupPath != cfg.Paths.RegistryFile+pipeline.BackupSuffix {
		t.Fatalf("backup path = %q", res.BackupPath)
	}
	if got := testsupport.ReadFile(t, res.BackupPath); got != testsupport.SampleRegistry {
		t.Fatalf("backup should hold the original, got %q", got)
	}

	rewritten := testsupport.ReadFile(t, cfg.Paths.RegistryFile)
	if !strings.Contains(rewritten, "[bob_smith]") || !strings.Contains(rewritten, `"twitter:Art" = "alice_draws"`) {
		t.Fatalf("unexpected rewritten registry:\n%s", rewritten)
	}

	username, art, err := publish.Read(cfg.Paths.OutputDir, "ali", p.Publisher().Codec())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if username != "alice" || art.Name != "Alice" || art.Flag != "🇯🇵" {
		t.Fatalf("unexpected artifact: %s %+v", username, art)
	}
	if art.Avatar != "https://unavatar.io/github/alice?size=400" {
		t.Fatalf("avatar = %q", art.Avatar)
	}

	second := run(t, p)
	if second.Published || second.SourceRewritten {
		t.Fatalf("second run should find nothing to do: %+v", second.Decision)
	}
	if second.RunID == res.RunID {
		t.Fatal("run ids should be unique")
	}
}

const malformedRegistry = `bad = "oops"

["Bob Smith"]
github = "bob"
telegram = 5
__alias__ = "solo"

[""]
github = "nobody"

[[listed]]
github = "carol"
`

func TestRunKeepsMalformedEntriesInSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteRegistry(t, cfg, malformedRegistry)
	p := newPipeline(t, cfg)

	res := run(t, p)
	if !res.Published || !res.Decision.NormalizationChanged {
		t.Fatalf("first run should publish: %+v", res.Decision)
	}
	if !res.RewriteSuppressed || res.SourceRewritten {
		t.Fatalf("rewrite should be suppressed: suppressed=%v rewritten=%v", res.RewriteSuppressed, res.SourceRewritten)
	}
	if got := len(diag.Filter(res.Diagnostics, diag.KindMalformedRecord)); got != 3 {
		t.Fatalf("malformed records = %d, want 3", got)
	}
	if got := testsupport.ReadFile(t, cfg.Paths.RegistryFile); got != malformedRegistry {
		t.Fatalf("registry should be left as authored, got:\n%s", got)
	}
	if _, err := os.Stat(cfg.Paths.RegistryFile + pipeline.BackupSuffix); !os.IsNotExist(err) {
		t.Fatal("no backup expected without a rewrite")
	}
	if username, _, err := publish.Read(cfg.Paths.OutputDir, "bob", p.Publisher().Codec()); err != nil || username != "bob_smith" {
		t.Fatalf("Read(bob) = %q, %v", username, err)
	}

	second := run(t, p)
	if second.Published || second.SourceRewritten || !second.RewriteSuppressed {
		t.Fatalf("unchanged malformed registry should not republish: %+v", second)
	}

	if _, err := p.Format(context.Background()); !errors.Is(err, pipeline.ErrLossyRewrite) {
		t.Fatalf("Format: expected ErrLossyRewrite, got %v", err)
	}
	if got := testsupport.ReadFile(t, cfg.Paths.RegistryFile); got != malformedRegistry {
		t.Fatal("format must not touch a registry with malformed entries")
	}

	testsupport.WriteRegistry(t, cfg, "[\"Bob Smith\"]\ngithub = \"bob\"\n")
	fixed := run(t, p)
	if !fixed.SourceRewritten || fixed.RewriteSuppressed {
		t.Fatalf("clean registry should be rewritten: %+v", fixed)
	}
	if got := testsupport.ReadFile(t, cfg.Paths.RegistryFile); !strings.Contains(got, "[bob_smith]") {
		t.Fatalf("rewritten registry:\n%s", got)
	}
}

func TestRunWithUnreadableRegistryPublishesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := newPipeline(t, cfg)

	res := run(t, p)
	if res.LoadErr == nil {
		t.Fatal("expected load error for missing registry")
	}
	if res.Published || res.Registry.Len() != 0 {
		t.Fatalf("nothing should be published: %+v", res)
	}
	if _, err := os.Stat(cfg.Paths.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("output dir should not be created, err=%v", err)
	}

	testsupport.WriteRegistry(t, cfg, "[broken\n")
	res = run(t, p)
	if res.LoadErr == nil || res.Published {
		t.Fatalf("expected parse failure without publish: %+v", res)
	}
	if got := testsupport.ReadFile(t, cfg.Paths.RegistryFile); got != "[broken\n" {
		t.Fatalf("unparsable registry must not be rewritten, got %q", got)
	}
}

func TestContentChangeRepublishes(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCodec(codec.JSONName))
	testsupport.WriteRegistry(t, cfg, "[alice]\ngithub = \"alice\"\n")
	p := newPipeline(t, cfg)

	first := run(t, p)
	if !first.Published || first.Decision.NormalizationChanged {
		t.Fatalf("normalized input should publish without rewrite: %+v", first.Decision)
	}

	testsupport.WriteRegistry(t, cfg, "[alice]\ngithub = \"alice2\"\n")
	second := run(t, p)
	if !second.Published || !second.Decision.ContentChanged {
		t.Fatalf("changed content should republish: %+v", second.Decision)
	}
	_, art, err := publish.Read(cfg.Paths.OutputDir, "alice", codec.JSON{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(art.Socials) != 1 || art.Socials[0].URL != "https://github.com/alice2" {
		t.Fatalf("stale artifact: %+v", art)
	}
}

func TestSeedFromStateSkipsUnchangedRegistry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteRegistry(t, cfg, "[alice]\ngithub = \"alice\"\n")
	store := testsupport.MustOpenStore(t, cfg)

	first := newPipeline(t, cfg, pipeline.WithStore(store))
	if fp, err := first.Seed(context.Background()); err != nil || fp.Valid() {
		t.Fatalf("empty history should not seed: %s, %v", fp, err)
	}
	if res := run(t, first); !res.Published {
		t.Fatal("first run should publish")
	}

	restarted := newPipeline(t, cfg, pipeline.WithStore(store))
	fp, err := restarted.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !fp.Valid() {
		t.Fatal("expected seeded fingerprint")
	}
	if res := run(t, restarted); res.Published {
		t.Fatal("unchanged registry should not republish after restart")
	}

	forced := newPipeline(t, cfg, pipeline.WithStore(store), pipeline.WithForce(true))
	if fp, _ := forced.Seed(context.Background()); fp.Valid() {
		t.Fatal("forced pipeline should not seed")
	}
	if res := run(t, forced); !res.Published {
		t.Fatal("forced run should publish")
	}

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 recorded runs, got %d", len(runs))
	}
	if !runs[0].Forced || !runs[0].Published || runs[1].Published {
		t.Fatalf("unexpected history: %+v", runs)
	}
}

func TestSeedIgnoredWhenOutputMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteRegistry(t, cfg, "[alice]\ngithub = \"alice\"\n")
	store := testsupport.MustOpenStore(t, cfg)

	run(t, newPipeline(t, cfg, pipeline.WithStore(store)))
	if err := os.RemoveAll(cfg.Paths.OutputDir); err != nil {
		t.Fatal(err)
	}

	restarted := newPipeline(t, cfg, pipeline.WithStore(store))
	if fp, err := restarted.Seed(context.Background()); err != nil || fp.Valid() {
		t.Fatalf("missing output should skip seeding: %s, %v", fp, err)
	}
	if res := run(t, restarted); !res.Published {
		t.Fatal("missing output should be rebuilt")
	}
}

func TestRunWritesMetrics(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMetricsTextfile())
	testsupport.WriteRegistry(t, cfg, testsupport.SampleRegistry)
	p := newPipeline(t, cfg, pipeline.WithMetrics(metrics.New(), cfg.Metrics.Textfile))

	run(t, p)
	body := testsupport.ReadFile(t, cfg.Metrics.Textfile)
	for _, want := range []string{"artistdb_artists 2", "artistdb_last_run_published 1"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}

func TestRunHonoursSaveDelayAndCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Publish.SaveDelayMS = 1000
	testsupport.WriteRegistry(t, cfg, testsupport.SampleRegistry)

	var slept time.Duration
	p := newPipeline(t, cfg, pipeline.WithClock(nil, func(_ context.Context, d time.Duration) error {
		slept = d
		return context.Canceled
	}))
	_, err := p.Run(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation from sleep, got %v", err)
	}
	if slept != time.Second {
		t.Fatalf("slept %s, want 1s", slept)
	}
	if got := testsupport.ReadFile(t, cfg.Paths.RegistryFile); got != testsupport.SampleRegistry {
		t.Fatal("cancelled run must not rewrite the registry")
	}
}

func TestFormatWritesTimestampedBackup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteRegistry(t, cfg, testsupport.SampleRegistry)
	fixed := time.Unix(1700000000, 0)
	p := newPipeline(t, cfg, pipeline.WithClock(func() time.Time { return fixed }, nil))

	res, err := p.Format(context.Background())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !res.Changed || res.Artists != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.BackupPath != cfg.Paths.RegistryFile+"-1700000000.bak" {
		t.Fatalf("backup path = %q", res.BackupPath)
	}
	if _, err := os.Stat(cfg.Paths.OutputDir); !os.IsNotExist(err) {
		t.Fatal("format must not publish")
	}

	again, err := p.Format(context.Background())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if again.Changed {
		t.Fatal("formatting a normalized registry should be a no-op")
	}

	testsupport.WriteRegistry(t, cfg, "[broken\n")
	if _, err := p.Format(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAcquireLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "artistdb.lock")
	first, err := pipeline.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := pipeline.AcquireLock(path); !errors.Is(err, pipeline.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	second, err := pipeline.AcquireLock(path)
	if err != nil {
		t.Fatalf("lock should be free after release: %v", err)
	}
	_ = second.Release()
}

func TestNewRejectsUnknownCodec(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCodec("bincode"))
	if _, err := pipeline.New(cfg); !errors.Is(err, codec.ErrUnknownCodec) {
		t.Fatalf("expected ErrUnknownCodec, got %v", err)
	}
}

func TestResolveDoesNotPublish(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := newPipeline(t, cfg)
	if _, _, err := p.Resolve(context.Background()); err == nil {
		t.Fatal("expected error for missing registry")
	}

	testsupport.WriteRegistry(t, cfg, testsupport.SampleRegistry)
	reg, _, err := p.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if artist, ok := reg.Lookup("ali"); !ok || artist.Username != "alice" {
		t.Fatalf("Lookup(ali) = %+v, %v", artist, ok)
	}
	if _, err := os.Stat(cfg.Paths.OutputDir); !os.IsNotExist(err) {
		t.Fatal("resolve must not publish")
	}
	if got := testsupport.ReadFile(t, cfg.Paths.RegistryFile); got != testsupport.SampleRegistry {
		t.Fatal("resolve must not rewrite the registry")
	}
}
