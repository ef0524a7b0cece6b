package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"artistdb/internal/state"
)

type runView struct {
	ID                   string    `json:"id"`
	StartedAt            time.Time `json:"started_at"`
	DurationMS           int64     `json:"duration_ms"`
	Fingerprint          string    `json:"fingerprint"`
	Published            bool      `json:"published"`
	Forced               bool      `json:"forced"`
	Artists              int       `json:"artists"`
	Aliases              int       `json:"aliases"`
	Bytes                int64     `json:"bytes"`
	Failures             int       `json:"failures"`
	Diagnostics          int       `json:"diagnostics"`
	NormalizationChanged bool      `json:"normalization_changed"`
	SourceRewritten      bool      `json:"source_rewritten"`
	Error                string    `json:"error,omitempty"`
}

func newRunView(run state.Run) runView {
	return runView{
		ID:                   run.ID,
		StartedAt:            run.StartedAt,
		DurationMS:           run.Duration().Milliseconds(),
		Fingerprint:          run.Fingerprint.String(),
		Published:            run.Published,
		Forced:               run.Forced,
		Artists:              run.Artists,
		Aliases:              run.Aliases,
		Bytes:                run.Bytes,
		Failures:             run.Failures,
		Diagnostics:          run.Diagnostics,
		NormalizationChanged: run.NormalizationChanged,
		SourceRewritten:      run.SourceRewritten,
		Error:                run.ErrorMessage,
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent build runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *state.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if jsonOutput {
					views := make([]runView, 0, len(runs))
					for _, run := range runs {
						views = append(views, newRunView(run))
					}
					return writeJSON(out, views)
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						humanize.Time(run.StartedAt),
						yesNo(run.Published),
						strconv.Itoa(run.Artists),
						strconv.Itoa(run.Aliases),
						humanize.Bytes(uint64(max(run.Bytes, 0))),
						strconv.Itoa(run.Diagnostics),
						run.Fingerprint.String(),
						valueOrDash(run.ErrorMessage),
					})
				}
				writeTable(out,
					[]string{"Run", "Started", "Published", "Artists", "Aliases", "Size", "Diagnostics", "Fingerprint", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft})
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
