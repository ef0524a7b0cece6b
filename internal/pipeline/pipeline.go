package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"artistdb/internal/avatar"
	"artistdb/internal/catalog"
	"artistdb/internal/codec"
	"artistdb/internal/config"
	"artistdb/internal/diag"
	"artistdb/internal/document"
	"artistdb/internal/fileutil"
	"artistdb/internal/fingerprint"
	"artistdb/internal/logging"
	"artistdb/internal/metrics"
	"artistdb/internal/publish"
	"artistdb/internal/registry"
	"artistdb/internal/social"
	"artistdb/internal/state"
)

// BackupSuffix is appended to the registry path for the pre-rewrite copy.
const BackupSuffix = ".bak"

// Result describes one run.
type Result struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Decision    fingerprint.Decision
	Registry    *registry.Registry
	Diagnostics []diag.Diagnostic
	Stats       publish.Stats
	Published   bool
	// SourceRewritten is set when the registry file was replaced with its
	// normalized form.
	SourceRewritten bool
	// RewriteSuppressed is set when the normalized form would have dropped
	// malformed records or fields, so the registry was left as authored.
	RewriteSuppressed bool
	BackupPath        string
	// LoadErr is the document read/parse failure, if any. The run still
	// completes with an empty registry.
	LoadErr error
}

// Duration returns the wall time of the run.
func (r Result) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithStore records every run and enables Seed.
func WithStore(store *state.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithMetrics records run figures and writes them to textfile when it is set.
func WithMetrics(rec *metrics.Recorder, textfile string) Option {
	return func(p *Pipeline) {
		p.metrics = rec
		p.metricsPath = textfile
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithCatalog replaces the built-in platform catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(p *Pipeline) { p.catalog = cat }
}

// WithForce marks runs as forced: Seed does nothing, so the first run
// publishes regardless of history.
func WithForce(force bool) Option {
	return func(p *Pipeline) { p.forced = force }
}

// WithClock overrides time.Now and the save-delay sleep, for tests.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// Pipeline wires the resolution core to its file-system boundary.
type Pipeline struct {
	registryPath string
	saveDelay    time.Duration
	backup       bool
	forced       bool

	catalog    *catalog.Catalog
	normalizer *registry.Normalizer
	publisher  *publish.Publisher
	detector   *fingerprint.Detector

	store       *state.Store
	metrics     *metrics.Recorder
	metricsPath string

	logger *slog.Logger
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error

	mu sync.Mutex
}

// New builds a Pipeline from cfg.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	c, err := codec.ByName(cfg.Publish.Codec)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		registryPath: cfg.Paths.RegistryFile,
		saveDelay:    cfg.SaveDelay(),
		backup:       cfg.Publish.BackupOnRewrite,
		catalog:      catalog.Default(),
		detector:     fingerprint.NewDetector(),
		now:          time.Now,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")

	avatars := avatar.NewResolver(p.catalog,
		avatar.WithBaseURL(cfg.Avatar.ServiceURL),
		avatar.WithSize(cfg.Avatar.Size))
	p.normalizer = registry.NewNormalizer(social.NewResolver(p.catalog), avatars,
		registry.WithWorkers(cfg.Publish.Workers))
	p.publisher = publish.New(cfg.Paths.OutputDir, c,
		publish.WithRecreate(cfg.Publish.RecreateOutputDir),
		publish.WithWorkers(cfg.Publish.Workers),
		publish.WithLogger(p.logger))
	return p, nil
}

// Catalog returns the platform catalog in use.
func (p *Pipeline) Catalog() *catalog.Catalog { return p.catalog }

// Publisher returns the artifact publisher.
func (p *Pipeline) Publisher() *publish.Publisher { return p.publisher }

// Resolve loads and normalizes the registry without publishing or rewriting
// anything. Unlike Run, an unreadable registry is returned as an error.
func (p *Pipeline) Resolve(ctx context.Context) (*registry.Registry, []diag.Diagnostic, error) {
	doc, err := document.Load(p.registryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load registry: %s", document.DescribeError(err))
	}
	return p.normalizer.Normalize(ctx, doc)
}

// Seed primes change detection with the last published fingerprint from the
// state store. It does nothing when forced, without a store, or when the
// output directory is gone (the artifacts must be rebuilt).
func (p *Pipeline) Seed(ctx context.Context) (fingerprint.Fingerprint, error) {
	if p.forced || p.store == nil {
		return fingerprint.Zero, nil
	}
	if _, err := os.Stat(p.publisher.Dir()); err != nil {
		p.logger.Info("output directory missing; next run publishes",
			logging.String(logging.FieldPath, p.publisher.Dir()))
		return fingerprint.Zero, nil
	}
	last, err := p.store.LastPublished(ctx)
	if err != nil {
		return fingerprint.Zero, fmt.Errorf("seed from state: %w", err)
	}
	if last == nil {
		return fingerprint.Zero, nil
	}
	p.detector.Seed(last.Fingerprint)
	p.logger.Debug("seeded previous fingerprint",
		logging.String("fingerprint", last.Fingerprint.String()),
		logging.String("from_run", last.ID))
	return last.Fingerprint, nil
}

// Run executes one pass. Only a cancelled context or an unusable output
// directory returns an error; everything else is diagnosed and logged.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res := Result{RunID: uuid.NewString(), StartedAt: p.now()}
	ctx = logging.WithRunID(ctx, res.RunID)
	logger := logging.WithContext(ctx, p.logger)

	doc, err := document.Load(p.registryPath)
	if err != nil {
		res.LoadErr = err
		logging.ErrorWithContext(logger, "registry unreadable; continuing with an empty registry", "registry_load_failed",
			logging.String(logging.FieldPath, p.registryPath),
			logging.String("detail", document.DescribeError(err)),
			logging.String(logging.FieldErrorHint, "fix the registry file; nothing is published until it parses"))
		doc = &document.Document{}
	}

	reg, diags, err := p.normalizer.Normalize(ctx, doc)
	if err != nil {
		return res, err
	}
	res.Registry = reg
	res.Diagnostics = diags
	for _, d := range diags {
		logging.LogDiagnostic(ctx, logger, d)
	}

	source := reg.SourceDocument()
	pre := fingerprint.OfDocument(doc)
	post := fingerprint.OfDocument(source)
	res.Decision = p.detector.Decide(pre, post, fingerprint.OfRegistry(reg))
	logger.Debug("change detection",
		logging.String("previous", res.Decision.Previous.String()),
		logging.String("current", res.Decision.Current.String()),
		logging.Bool("content_changed", res.Decision.ContentChanged),
		logging.Bool("normalization_changed", res.Decision.NormalizationChanged))

	// A rewrite that would drop malformed data is skipped, and on its own no
	// longer triggers a publish.
	shouldPublish := res.Decision.ContentChanged
	if res.Decision.NormalizationChanged {
		if n := droppedByRewrite(diags); n > 0 {
			res.RewriteSuppressed = true
			logging.WarnWithContext(logger, "registry left as authored; normalizing would drop malformed entries", "registry_rewrite_suppressed",
				logging.Int("malformed", n),
				logging.String(logging.FieldImpact, "registry not normalized this run"),
				logging.String(logging.FieldErrorHint, "fix the malformed records and fields reported above"))
		} else {
			shouldPublish = true
		}
	}

	var runErr error
	if shouldPublish {
		runErr = p.publishAndRewrite(ctx, logger, &res, source)
	} else {
		logger.Info("registry unchanged; nothing to publish", logging.Int("artists", reg.Len()))
	}

	res.FinishedAt = p.now()
	p.record(ctx, logger, res, runErr)
	return res, runErr
}

func (p *Pipeline) publishAndRewrite(ctx context.Context, logger *slog.Logger, res *Result, source *document.Document) error {
	stats, pubDiags, err := p.publisher.Publish(ctx, res.Registry)
	res.Stats = stats
	res.Diagnostics = append(res.Diagnostics, pubDiags...)
	if err != nil {
		// Forget the new fingerprint so the next run retries.
		p.detector.Seed(res.Decision.Previous)
		return err
	}
	res.Published = true
	logger.Info("published registry",
		logging.Int("artists", stats.Artists),
		logging.Int("aliases", stats.Aliases),
		logging.Int64("bytes", stats.Bytes),
		logging.Int("failures", stats.Failures),
		logging.String(logging.FieldPath, p.publisher.Dir()))

	if !res.Decision.NormalizationChanged || res.RewriteSuppressed || res.LoadErr != nil {
		return nil
	}
	if err := p.sleep(ctx, p.saveDelay); err != nil {
		return err
	}
	if p.backup {
		backup, err := fileutil.Backup(p.registryPath, BackupSuffix)
		if err != nil {
			logging.WarnWithContext(logger, "registry backup failed; source left as authored", "registry_backup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "registry not normalized this run"),
				logging.String(logging.FieldErrorHint, "check permissions next to the registry file"))
			return nil
		}
		res.BackupPath = backup
	}
	if err := document.WriteFile(p.registryPath, source); err != nil {
		logging.WarnWithContext(logger, "registry rewrite failed", "registry_rewrite_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "registry not normalized this run"),
			logging.String(logging.FieldErrorHint, "check permissions on the registry file"))
		return nil
	}
	res.SourceRewritten = true
	logger.Info("rewrote registry in normalized form",
		logging.String(logging.FieldPath, p.registryPath),
		logging.String("backup", res.BackupPath))
	return nil
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, res Result, runErr error) {
	if p.store != nil {
		run := state.Run{
			ID:                   res.RunID,
			StartedAt:            res.StartedAt,
			FinishedAt:           res.FinishedAt,
			Fingerprint:          res.Decision.Current,
			Published:            res.Published,
			Artists:              res.Stats.Artists,
			Aliases:              res.Stats.Aliases,
			Bytes:                res.Stats.Bytes,
			Failures:             res.Stats.Failures,
			Diagnostics:          len(res.Diagnostics),
			NormalizationChanged: res.Decision.NormalizationChanged,
			SourceRewritten:      res.SourceRewritten,
			Forced:               p.forced,
		}
		if !res.Published && res.Registry != nil {
			run.Artists = res.Registry.Len()
			run.Aliases = res.Registry.AliasCount()
		}
		if runErr != nil {
			run.ErrorMessage = runErr.Error()
		} else if res.LoadErr != nil {
			run.ErrorMessage = res.LoadErr.Error()
		}
		// Recording must survive a cancelled run context.
		if err := p.store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
			logging.WarnWithContext(logger, "run history not recorded", "state_record_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "a restart may republish unchanged artifacts"))
		}
	}

	if p.metrics == nil {
		return
	}
	snap := metrics.Snapshot{
		Diagnostics:      diag.Count(res.Diagnostics),
		DroppedAliases:   len(diag.Filter(res.Diagnostics, diag.KindAliasCollision)),
		ArtifactsWritten: res.Stats.Written(),
		ArtifactsFailed:  res.Stats.Failures,
		Bytes:            res.Stats.Bytes,
		Duration:         res.Duration(),
		FinishedAt:       res.FinishedAt,
		Published:        res.Published,
		Failed:           runErr != nil || res.LoadErr != nil,
	}
	if res.Registry != nil {
		snap.Artists = res.Registry.Len()
		snap.Aliases = res.Registry.AliasCount()
	}
	p.metrics.Observe(snap)
	if err := p.metrics.WriteTextfile(p.metricsPath); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "dashboards show the previous run"))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
