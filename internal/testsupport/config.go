package testsupport

import (
	"path/filepath"
	"testing"

	"artistdb/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The registry file path is set but the file is not created; use
// WriteRegistry for that. The save delay defaults to zero.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RegistryFile = filepath.Join(base, "src", "artists.toml")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = ""
	cfgVal.Publish.SaveDelayMS = 0
	cfgVal.Watch.DebounceMS = 20

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithCodec selects the artifact codec.
func WithCodec(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.Codec = name
	}
}

// WithMetricsTextfile enables the metrics textfile inside the temp dir.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "artistdb.prom")
	}
}

// WithRecreateOutput sets publish.recreate_output_dir.
func WithRecreateOutput(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.RecreateOutputDir = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
