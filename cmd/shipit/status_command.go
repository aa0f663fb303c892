package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"shipit/internal/record"
	"shipit/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show recorded progress for every project folder in the root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			names, err := workflow.Enumerate(cfg.Paths.RootDir, cfg.Paths.DoneDirName)
			if err != nil {
				return err
			}
			store := record.NewStore(cfg.Record.SidecarName)

			headers := []string{"Folder", "Identity", "VC", "Host A", "Host B", "Record"}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rec, source, _ := store.Load(filepath.Join(cfg.Paths.RootDir, name))
				rows = append(rows, []string{
					name,
					rec.Identity,
					flagCell(rec.Stages.VersionControl, colorize),
					flagCell(rec.Stages.HostA, colorize),
					flagCell(rec.Stages.HostB, colorize),
					string(source),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintf(out, "No project folders found in %s\n", cfg.Paths.RootDir)
			} else {
				fmt.Fprintln(out, renderTable(headers, rows, nil))
			}

			if done, err := workflow.Enumerate(cfg.DoneDir(), ""); err == nil {
				fmt.Fprintf(out, "%d folders relocated to %s\n", len(done), cfg.DoneDir())
			}
			return nil
		},
	}
}

func flagCell(done bool, colorize bool) string {
	if done {
		return paint("done", ansiGreen, colorize)
	}
	return paint("pending", ansiYellow, colorize)
}
