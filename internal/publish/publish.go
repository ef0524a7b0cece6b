// Package publish writes the resolved registry to the output directory: one
// encoded artifact per artist, named by username, plus one small file per
// alias holding "@" followed by the owning username.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"artistdb/internal/codec"
	"artistdb/internal/diag"
	"artistdb/internal/fileutil"
	"artistdb/internal/logging"
	"artistdb/internal/registry"
	"artistdb/internal/textutil"
)

// AliasPrefix starts the contents of every alias file.
const AliasPrefix = "@"

// Stats summarizes one publish.
type Stats struct {
	Artists  int
	Aliases  int
	Bytes    int64
	Failures int
}

// Written returns the number of files written.
func (s Stats) Written() int { return s.Artists + s.Aliases }

// Option customizes a Publisher.
type Option func(*Publisher)

// WithRecreate removes and recreates the output directory before writing.
func WithRecreate(enabled bool) Option {
	return func(p *Publisher) { p.recreate = enabled }
}

// WithWorkers bounds concurrent artist writes. Non-positive means GOMAXPROCS.
func WithWorkers(workers int) Option {
	return func(p *Publisher) {
		if workers > 0 {
			p.workers = workers
		}
	}
}

// WithLogger sets the logger used for per-file failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Publisher writes registries to a directory using a codec.
type Publisher struct {
	dir      string
	codec    codec.Codec
	recreate bool
	workers  int
	logger   *slog.Logger
}

// New returns a Publisher writing to dir.
func New(dir string, c codec.Codec, opts ...Option) *Publisher {
	p := &Publisher{
		dir:     dir,
		codec:   c,
		workers: runtime.GOMAXPROCS(0),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dir returns the output directory.
func (p *Publisher) Dir() string { return p.dir }

// Codec returns the artifact codec.
func (p *Publisher) Codec() codec.Codec { return p.codec }

// Publish writes every artist and alias in reg. Individual encode or write
// failures are reported as diagnostics and counted in Stats.Failures; only
// an unusable output directory or a cancelled context returns an error.
func (p *Publisher) Publish(ctx context.Context, reg *registry.Registry) (Stats, []diag.Diagnostic, error) {
	if p.codec == nil {
		return Stats{}, nil, errors.New("publish: no codec configured")
	}
	if err := p.prepareDir(); err != nil {
		return Stats{}, nil, err
	}
	if reg == nil {
		return Stats{}, nil, nil
	}

	var (
		mu    sync.Mutex
		stats Stats
		diags []diag.Diagnostic
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, artist := range reg.Artists() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			local, found := p.writeArtist(artist)
			mu.Lock()
			stats.Artists += local.Artists
			stats.Aliases += local.Aliases
			stats.Bytes += local.Bytes
			stats.Failures += local.Failures
			diags = append(diags, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, sortDiagnostics(diags), fmt.Errorf("publish: %w", err)
	}
	return stats, sortDiagnostics(diags), nil
}

func (p *Publisher) prepareDir() error {
	if p.recreate {
		if err := os.RemoveAll(p.dir); err != nil {
			return fmt.Errorf("remove output directory %s: %w", p.dir, err)
		}
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", p.dir, err)
	}
	return nil
}

func (p *Publisher) writeArtist(artist *registry.Artist) (Stats, []diag.Diagnostic) {
	var (
		stats Stats
		diags []diag.Diagnostic
	)
	fail := func(kind diag.Kind, name, msg string) {
		stats.Failures++
		d := diag.New(kind, artist.Username, name, msg)
		diags = append(diags, d)
		logging.WarnWithContext(p.logger, "artifact not written", string(kind),
			logging.String(logging.FieldArtist, artist.Username),
			logging.String(logging.FieldPath, name),
			logging.String("reason", msg),
			logging.String(logging.FieldErrorHint, "rename the artist or alias to a plain file name"),
			logging.String(logging.FieldImpact, "lookups by this name will miss"),
		)
	}

	if !textutil.IsSafeFileName(artist.Username) {
		fail(diag.KindUnsafeName, artist.Username, "username is not a valid file name")
		return stats, diags
	}
	data, err := p.codec.Encode(codec.FromArtist(artist))
	if err != nil {
		fail(diag.KindPublishFailure, artist.Username, err.Error())
		return stats, diags
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(p.dir, artist.Username), data, 0o644); err != nil {
		fail(diag.KindPublishFailure, artist.Username, err.Error())
		return stats, diags
	}
	stats.Artists++
	stats.Bytes += int64(len(data))

	pointer := []byte(AliasPrefix + artist.Username)
	for _, alias := range artist.Aliases {
		if !textutil.IsSafeFileName(alias) {
			fail(diag.KindUnsafeName, alias, "alias is not a valid file name")
			continue
		}
		if err := fileutil.WriteFileAtomic(filepath.Join(p.dir, alias), pointer, 0o644); err != nil {
			fail(diag.KindPublishFailure, alias, err.Error())
			continue
		}
		stats.Aliases++
		stats.Bytes += int64(len(pointer))
	}
	return stats, diags
}

func sortDiagnostics(diags []diag.Diagnostic) []diag.Diagnostic {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Artist != diags[j].Artist {
			return diags[i].Artist < diags[j].Artist
		}
		return diags[i].Field < diags[j].Field
	})
	return diags
}
