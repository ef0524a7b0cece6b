package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"artistdb/internal/pipeline"
)

func newFormatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Rewrite the registry in normalized form without publishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock, err := pipeline.AcquireLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			_, p, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			res, err := p.Format(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Changed {
				fmt.Fprintf(out, "Formatted %s (%d artists)\n", cfg.Paths.RegistryFile, res.Artists)
			} else {
				fmt.Fprintf(out, "%s already normalized (%d artists)\n", cfg.Paths.RegistryFile, res.Artists)
			}
			fmt.Fprintf(out, "Backup: %s\n", res.BackupPath)
			return nil
		},
	}
}
