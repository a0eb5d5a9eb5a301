package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mp4press/internal/journal"
	"mp4press/internal/router"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently routed files from the run journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("journal is disabled (set journal.enabled = true)")
			}
			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No journal entries")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				detail := e.ErrorMessage
				if detail == "" {
					detail = e.DecisionReason
				}
				output := "-"
				if e.OutputBytes > 0 {
					output = humanize.IBytes(uint64(e.OutputBytes))
				}
				rows = append(rows, []string{
					humanize.Time(e.FinishedAt),
					e.FileName,
					e.Outcome,
					fallback(e.Disposition, "-"),
					humanize.IBytes(uint64(max(e.OriginalBytes, 0))),
					output,
					detail,
				})
			}
			columns := []column{
				leftColumn("Finished"),
				leftColumn("File"),
				leftColumn("Outcome"),
				leftColumn("Decision"),
				rightColumn("Original"),
				rightColumn("Output"),
				leftColumn("Detail"),
			}
			fmt.Fprintln(out, renderTable(columns, rows, false))

			latest := entries[0].RunID
			counts, err := store.CountByOutcome(cmd.Context(), latest)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Latest run %s: %s\n", latest, formatOutcomeCounts(counts))
			fmt.Fprintf(out, "Journal: %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

// formatOutcomeCounts renders counts in router result order, skipping zeros.
func formatOutcomeCounts(counts map[string]int) string {
	order := []router.Result{router.ResultDone, router.ResultCompressed, router.ResultError, router.ResultFailed}
	parts := make([]string, 0, len(order))
	for _, result := range order {
		if n := counts[string(result)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", result, n))
		}
	}
	if len(parts) == 0 {
		return "no entries"
	}
	return strings.Join(parts, " ")
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
