package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"artistdb/internal/codec"
	"artistdb/internal/registry"
)

// artistView is the JSON shape printed by list and show.
type artistView struct {
	Username string `json:"username"`
	codec.Artifact
}

func newArtistView(a *registry.Artist) artistView {
	return artistView{Username: a.Username, Artifact: codec.FromArtist(a)}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resolved artists without publishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			reg, _, err := p.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			artists := reg.Artists()

			out := cmd.OutOrStdout()
			if jsonOutput {
				views := make([]artistView, 0, len(artists))
				for _, a := range artists {
					views = append(views, newArtistView(a))
				}
				return writeJSON(out, views)
			}

			rows := make([][]string, 0, len(artists))
			for _, a := range artists {
				rows = append(rows, []string{
					a.Username,
					valueOrDash(a.DisplayName),
					valueOrDash(strings.Join(a.Aliases, ", ")),
					strconv.Itoa(len(a.Socials)),
					yesNo(a.Avatar != ""),
				})
			}
			writeTable(out,
				[]string{"Username", "Name", "Aliases", "Socials", "Avatar"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}
