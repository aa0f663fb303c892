package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shipit/internal/config"
	"shipit/internal/history"
	"shipit/internal/logging"
	"shipit/internal/record"
	"shipit/internal/stageexec"
	"shipit/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var noRelocate bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Publish, deploy, and relocate every project folder in the root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runner := ctx.runner(logger)

			opts := []workflow.Option{
				workflow.WithDryRun(dryRun),
				workflow.WithRelocation(cfg.Relocation.Enabled && !noRelocate),
			}
			if ledger := openLedger(cfg, logger); ledger != nil {
				defer ledger.Close()
				opts = append(opts, workflow.WithLedger(ledger))
			}

			handlers := workflow.DefaultHandlers(cfg, runner, logger)
			manager := workflow.NewManager(cfg, handlers, runner, logger, opts...)
			summary, err := manager.Run(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report pending stages without invoking any tool")
	cmd.Flags().BoolVar(&noRelocate, "no-relocate", false, "Run stages but leave completed folders in place")
	return cmd
}

// openLedger opens the history database, returning nil when history is
// disabled or unavailable.
func openLedger(cfg *config.Config, logger *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	ledger, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		logging.WarnWithContext(logger, "history ledger unavailable; continuing without it",
			"history_open_failed",
			logging.String(logging.FieldErrorHint, "check paths.history_db or set history.enabled = false"),
			logging.String(logging.FieldImpact, "this batch will be missing from `shipit history`"),
			logging.Error(err),
		)
		return nil
	}
	return ledger
}

func printSummary(out io.Writer, summary workflow.Summary) {
	if len(summary.Folders) == 0 {
		fmt.Fprintf(out, "No project folders found in %s\n", summary.Root)
		return
	}
	headers := []string{"Folder", "Identity", "VC", "Host A", "Host B", "State", "Detail"}
	rows := make([][]string, 0, len(summary.Folders))
	for _, folder := range summary.Folders {
		row := []string{folder.Folder, folder.Identity}
		row = append(row, stageCells(folder)...)
		row = append(row, string(folder.State), folderDetail(folder))
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(headers, rows, nil))

	prefix := ""
	if summary.DryRun {
		prefix = "dry run: "
	}
	fmt.Fprintf(out, "%s%d folders: %d relocated, %d complete, %d partially done, %d pending, %d errored (%s)\n",
		prefix,
		len(summary.Folders),
		summary.Count(workflow.StateRelocated),
		summary.Count(workflow.StateComplete),
		summary.Count(workflow.StatePartiallyDone),
		summary.Count(workflow.StatePending),
		summary.Count(workflow.StateErroredRetained),
		summary.Finished.Sub(summary.Started).Round(time.Millisecond),
	)
}

func stageCells(folder workflow.FolderReport) []string {
	cells := make([]string, len(record.Stages))
	pending := make(map[record.Stage]bool, len(folder.Pending))
	for _, s := range folder.Pending {
		pending[s] = true
	}
	for i, s := range record.Stages {
		if pending[s] {
			cells[i] = "pending"
		} else {
			cells[i] = "done"
		}
	}
	for _, outcome := range folder.Outcomes {
		for i, s := range record.Stages {
			if outcome.Stage != s {
				continue
			}
			switch outcome.Status {
			case stageexec.StatusSucceeded:
				cells[i] = "ok"
			case stageexec.StatusFailed:
				cells[i] = "failed"
			}
		}
	}
	return cells
}

func folderDetail(folder workflow.FolderReport) string {
	if folder.Destination != "" {
		return "-> " + folder.Destination
	}
	if folder.Err != nil {
		return truncate(folder.Err.Error(), 60)
	}
	for _, outcome := range folder.Outcomes {
		if outcome.Status == stageexec.StatusFailed {
			return truncate(outcome.Stage.Label()+": "+outcome.Message(), 60)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
