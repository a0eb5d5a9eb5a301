package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mp4press/internal/preflight"
	"mp4press/internal/workdir"
)

var errPreflight = errors.New("required checks failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := workdir.FromConfig(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			results := preflight.RunAll(cmd.Context(), cfg, layout, nil)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkStatus(r.Passed, r.Optional), r.Detail})
			}
			columns := []column{leftColumn("Check"), statusColumn("Status"), leftColumn("Detail")}
			fmt.Fprintln(out, renderTable(columns, rows, colorize))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%w: %d of %d", errPreflight, len(failed), len(results))
			}
			return nil
		},
	}
}
