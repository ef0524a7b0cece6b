// Package metrics exposes pipeline run figures as Prometheus metrics.
//
// artistdb is a batch tool, so nothing is scraped directly: after each run the
// registry is written in text exposition format for node_exporter's textfile
// collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"artistdb/internal/diag"
)

// Snapshot carries the figures of one finished run.
type Snapshot struct {
	Artists          int
	Aliases          int
	DroppedAliases   int
	Diagnostics      map[diag.Kind]int
	ArtifactsWritten int
	ArtifactsFailed  int
	Bytes            int64
	Duration         time.Duration
	FinishedAt       time.Time
	Published        bool
	Failed           bool
}

// Recorder owns a private Prometheus registry for one process.
type Recorder struct {
	registry *prometheus.Registry

	Artists          prometheus.Gauge
	Aliases          prometheus.Gauge
	DroppedAliases   prometheus.Gauge
	Diagnostics      *prometheus.GaugeVec
	ArtifactsWritten prometheus.Gauge
	ArtifactsFailed  prometheus.Gauge
	Bytes            prometheus.Gauge
	RunDuration      prometheus.Gauge
	LastRun          prometheus.Gauge
	Published        prometheus.Gauge
	Runs             *prometheus.CounterVec
}

// New creates a Recorder with every metric registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		Artists: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_artists",
			Help: "Artists in the last resolved registry",
		}),
		Aliases: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_aliases",
			Help: "Aliases owned by exactly one artist in the last resolved registry",
		}),
		DroppedAliases: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_aliases_dropped",
			Help: "Aliases dropped because of collisions in the last run",
		}),
		Diagnostics: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "artistdb_diagnostics",
			Help: "Resolution diagnostics in the last run by kind",
		}, []string{"kind"}),
		ArtifactsWritten: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_artifacts_written",
			Help: "Artifact and alias files written by the last publish",
		}),
		ArtifactsFailed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_artifacts_failed",
			Help: "Artifacts skipped by the last publish because of errors",
		}),
		Bytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_artifact_bytes",
			Help: "Bytes written by the last publish",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		Published: factory.NewGauge(prometheus.GaugeOpts{
			Name: "artistdb_last_run_published",
			Help: "1 when the last run published artifacts, 0 when it found no change",
		}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artistdb_runs_total",
			Help: "Runs since process start by outcome",
		}, []string{"outcome"}),
	}
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Observe records the figures of one run. Publish-side gauges are left
// untouched when the run did not publish.
func (r *Recorder) Observe(s Snapshot) {
	if r == nil {
		return
	}
	r.Artists.Set(float64(s.Artists))
	r.Aliases.Set(float64(s.Aliases))
	r.DroppedAliases.Set(float64(s.DroppedAliases))
	r.Diagnostics.Reset()
	for kind, count := range s.Diagnostics {
		r.Diagnostics.WithLabelValues(string(kind)).Set(float64(count))
	}
	if s.Published {
		r.ArtifactsWritten.Set(float64(s.ArtifactsWritten))
		r.ArtifactsFailed.Set(float64(s.ArtifactsFailed))
		r.Bytes.Set(float64(s.Bytes))
		r.Published.Set(1)
	} else {
		r.Published.Set(0)
	}
	r.RunDuration.Set(s.Duration.Seconds())
	finished := s.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	r.LastRun.Set(float64(finished.Unix()))

	outcome := "unchanged"
	switch {
	case s.Failed:
		outcome = "failed"
	case s.Published:
		outcome = "published"
	}
	r.Runs.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the registry to path atomically. An empty path is a
// no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
