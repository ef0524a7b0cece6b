package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"artistdb/internal/codec"
	"artistdb/internal/publish"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var fromSource bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <username|alias>",
		Short: "Show one artist as published, or as resolved from the registry",
		Long: `Show one artist by username or alias. The published artifact is read from
the output directory; when it is missing (or with --source) the registry is
resolved instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			cfg, p, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}

			var view artistView
			origin := "published"
			found := false
			if !fromSource {
				username, art, err := publish.Read(cfg.Paths.OutputDir, name, p.Publisher().Codec())
				switch {
				case err == nil:
					view = artistView{Username: username, Artifact: art}
					found = true
				case !errors.Is(err, publish.ErrNotFound):
					return err
				}
			}
			if !found {
				reg, _, err := p.Resolve(cmd.Context())
				if err != nil {
					return err
				}
				artist, ok := reg.Lookup(name)
				if !ok {
					return fmt.Errorf("no artist or alias named %q", name)
				}
				view = newArtistView(artist)
				origin = "registry"
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printArtist(cmd.OutOrStdout(), view, origin)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromSource, "source", false, "Resolve from the registry even when a published artifact exists")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func printArtist(out io.Writer, view artistView, origin string) {
	fmt.Fprintf(out, "Username: %s (%s)\n", view.Username, origin)
	fmt.Fprintf(out, "Name:     %s\n", valueOrDash(view.Name))
	if view.Flag != "" {
		fmt.Fprintf(out, "Flag:     %s\n", view.Flag)
	}
	fmt.Fprintf(out, "Avatar:   %s\n", valueOrDash(view.Avatar))
	fmt.Fprintf(out, "Aliases:  %s\n", valueOrDash(strings.Join(view.Alias, ", ")))
	if len(view.Socials) == 0 {
		return
	}
	rows := make([][]string, 0, len(view.Socials))
	for _, s := range view.Socials {
		rows = append(rows, []string{valueOrDash(s.Code), valueOrDash(s.Desc), valueOrDash(s.URL)})
	}
	fmt.Fprintln(out)
	writeTable(out, []string{"Code", "Description", "URL"}, rows, nil)
}

func decodeArtifact(data []byte, c codec.Codec) (codec.Artifact, string, error) {
	if target, ok := strings.CutPrefix(string(data), publish.AliasPrefix); ok {
		return codec.Artifact{}, target, nil
	}
	art, err := c.Decode(data)
	return art, "", err
}
