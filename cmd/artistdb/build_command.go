package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"artistdb/internal/logging"
	"artistdb/internal/metrics"
	"artistdb/internal/pipeline"
	"artistdb/internal/state"
	"artistdb/internal/watch"
)

// historyKeep bounds the run history kept in the state store.
const historyKeep = 500

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var watchFlag bool
	var force bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve the registry and publish changed artifacts",
		Long: `Resolve the registry and publish one artifact per artist and one pointer
per alias into the output directory. Nothing is written when the registry
content matches the last published run; --force publishes regardless.

With --watch the command keeps running and rebuilds whenever the registry
file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			lock, err := pipeline.AcquireLock(cfg.LockPath())
			if err != nil {
				if errors.Is(err, pipeline.ErrLocked) {
					return fmt.Errorf("another artistdb build is running (lock %s)", cfg.LockPath())
				}
				return err
			}
			defer func() { _ = lock.Release() }()

			store, err := state.Open(cfg.StatePath())
			if err != nil {
				return err
			}
			defer store.Close()

			opts := []pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithStore(store),
				pipeline.WithForce(force),
			}
			if cfg.Metrics.Textfile != "" {
				opts = append(opts, pipeline.WithMetrics(metrics.New(), cfg.Metrics.Textfile))
			}
			p, err := pipeline.New(cfg, opts...)
			if err != nil {
				return err
			}
			if _, err := p.Seed(cmd.Context()); err != nil {
				logging.WarnWithContext(logger, "run history unavailable; publishing from scratch", "state_seed_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "unchanged artifacts may be republished"))
			}

			out := cmd.OutOrStdout()
			build := func(runCtx context.Context) error {
				res, err := p.Run(runCtx)
				printBuildResult(out, res)
				if _, pruneErr := store.Prune(context.WithoutCancel(runCtx), historyKeep); pruneErr != nil {
					logger.Debug("history prune failed", logging.Error(pruneErr))
				}
				return err
			}

			if err := build(cmd.Context()); err != nil && !watchFlag {
				return err
			}
			if !watchFlag {
				return nil
			}
			return watch.New(cfg.Paths.RegistryFile, cfg.Debounce(), logger).Run(cmd.Context(), build)
		},
	}

	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Rebuild whenever the registry file changes")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Publish even when nothing changed since the last run")
	return cmd
}

func printBuildResult(out io.Writer, res pipeline.Result) {
	switch {
	case res.LoadErr != nil:
		fmt.Fprintf(out, "Registry unreadable; nothing published (run %s)\n", res.RunID)
	case res.Published:
		fmt.Fprintf(out, "Published %d artists and %d aliases (%s) in %s\n",
			res.Stats.Artists, res.Stats.Aliases,
			humanize.Bytes(uint64(max(res.Stats.Bytes, 0))), res.Duration().Round(time.Millisecond))
		if res.Stats.Failures > 0 {
			fmt.Fprintf(out, "%d artifacts failed; see warnings above\n", res.Stats.Failures)
		}
		if res.SourceRewritten {
			fmt.Fprintf(out, "Registry rewritten in normalized form (backup %s)\n", valueOrDash(res.BackupPath))
		}
	default:
		fmt.Fprintf(out, "Registry unchanged; nothing published (%d artists)\n", registryLen(res))
	}
	if res.RewriteSuppressed {
		fmt.Fprintln(out, "Registry not normalized: fix the malformed entries reported above")
	}
}

func registryLen(res pipeline.Result) int {
	if res.Registry == nil {
		return 0
	}
	return res.Registry.Len()
}
