package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipit/internal/deps"
	"shipit/internal/preflight"
	"shipit/internal/workflow"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check required tools, provider authentication, and directories",
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
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, paint("Tools", ansiBlue, colorize))
			statuses := deps.CheckBinaries(cmd.Context(), runner, preflight.Requirements(cfg))
			for _, s := range statuses {
				kind := statusOK
				message := s.Version
				if !s.Available {
					kind = statusError
					if s.Optional {
						kind = statusWarn
					}
					message = s.Detail
				}
				fmt.Fprintln(out, renderStatusLine(s.Name, kind, message, colorize))
			}

			fmt.Fprintln(out, paint("Checks", ansiBlue, colorize))
			handlers := workflow.DefaultHandlers(cfg, runner, logger)
			failed := 0
			for _, r := range preflight.RunAll(cmd.Context(), cfg, handlers) {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					failed++
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if missing := deps.Missing(statuses); len(missing) > 0 || failed > 0 {
				return fmt.Errorf("doctor found %d missing tools and %d failed checks", len(missing), failed)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
