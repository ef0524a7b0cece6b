package main

import (
	"strings"

	"github.com/spf13/cobra"

	"artistdb/internal/catalog"
)

func newPlatformsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "platforms",
		Short:       "List the platform codes accepted as social keys",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.Default()
			platforms := cat.Platforms()
			rows := make([][]string, 0, len(platforms))
			for _, p := range platforms {
				rows = append(rows, []string{
					p.Code,
					p.Name,
					valueOrDash(strings.Join(cat.AliasesOf(p), ", ")),
					yesNo(p.AvatarCapable),
					valueOrDash(p.URLTemplate),
				})
			}
			writeTable(cmd.OutOrStdout(), []string{"Code", "Name", "Aliases", "Avatar", "Profile URL"}, rows, nil)
			return nil
		},
	}
}
