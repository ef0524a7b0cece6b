package preflight

import (
	"path/filepath"

	"artistdb/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

// RunAll executes every applicable check for cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckRegistry("Registry file", cfg.Paths.RegistryFile),
		CheckOutputParent("Output directory", cfg.Paths.OutputDir),
		CheckOutputParent("State directory", cfg.Paths.StateDir),
		CheckCodec("Artifact codec", cfg.Publish.Codec),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckOutputParent("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Metrics.Textfile != "" {
		results = append(results, CheckOutputParent("Metrics directory", filepath.Dir(cfg.Metrics.Textfile)))
	}
	return results
}
