package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"artistdb/internal/codec"
)

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var codecName string

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Print a published artifact as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(codecName)
			if name == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				name = cfg.Publish.Codec
			}
			c, err := codec.ByName(name)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read artifact: %w", err)
			}
			art, target, err := decodeArtifact(data, c)
			if err != nil {
				return fmt.Errorf("decode %s with %s codec: %w", args[0], c.Name(), err)
			}
			if target != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "alias of %s\n", target)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), art)
		},
	}

	cmd.Flags().StringVar(&codecName, "codec", "", fmt.Sprintf("Codec to decode with (%s); defaults to publish.codec", strings.Join(codec.Names(), ", ")))
	return cmd
}
