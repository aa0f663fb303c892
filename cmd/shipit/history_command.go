package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shipit/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent batches, or the stage attempts of one batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errors.New("history is disabled (history.enabled = false)")
			}
			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id := strings.TrimSpace(runID); id != "" {
				attempts, err := store.Attempts(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(attempts) == 0 {
					fmt.Fprintf(out, "No attempts recorded for run %s\n", id)
					return nil
				}
				rows := make([][]string, 0, len(attempts))
				for _, a := range attempts {
					rows = append(rows, []string{
						a.Folder, a.Identity, a.Stage, a.Status,
						a.Duration.Round(time.Millisecond).String(),
						truncate(a.ErrorMessage, 60),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Folder", "Identity", "Stage", "Status", "Duration", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No batches recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					yesNo(run.DryRun),
					strconv.Itoa(run.Counts.Total),
					strconv.Itoa(run.Counts.Relocated),
					strconv.Itoa(run.Counts.Partial + run.Counts.Pending),
					strconv.Itoa(run.Counts.Errored),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Dry run", "Folders", "Relocated", "Pending", "Errored"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of batches to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show stage attempts for this run id")
	return cmd
}
