package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mp4press/internal/config"
	"mp4press/internal/i18n"
	"mp4press/internal/journal"
	"mp4press/internal/logging"
	"mp4press/internal/media"
	"mp4press/internal/pipeline"
	"mp4press/internal/preflight"
	"mp4press/internal/router"
	"mp4press/internal/transcode"
	"mp4press/internal/watch"
	"mp4press/internal/workdir"
)

// buildCollaborators constructs the probe and encoder. Tests replace it.
var buildCollaborators = func(cfg *config.Config) (media.Inspector, transcode.Transcoder, error) {
	inspector := media.NewProbeInspector(cfg.Transcode.FFprobeBinary, nil)
	ffmpeg, err := transcode.New(cfg.Transcode.FFmpegBinary,
		transcode.WithCodecs(cfg.Transcode.VideoCodec, cfg.Transcode.AudioCodec),
		transcode.WithPadColor(cfg.Transcode.PadColor),
		transcode.WithTimeout(cfg.TranscodeTimeout()),
	)
	if err != nil {
		return nil, nil, err
	}
	return inspector, ffmpeg, nil
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, watchMode bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printer := i18n.New(i18n.Detect(os.Getenv))

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	layout, err := workdir.FromConfig(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, printer.Sprintf(i18n.MsgStart))
	fmt.Fprintln(out, printer.Sprintf(i18n.MsgWorkingDir, layout.Working))
	if cfg.Policy.ForceCompress {
		fmt.Fprintln(out, printer.Sprintf(i18n.MsgForceMode))
	}

	if err := checkReadiness(cmd.Context(), cfg, layout, logger); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), printer.Sprintf(i18n.MsgProgramError))
		return err
	}

	inspector, transcoder, err := buildCollaborators(cfg)
	if err != nil {
		return err
	}
	fr, err := router.New(router.SettingsFromConfig(cfg, layout), inspector, transcoder, logger)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Layout:     layout,
		Extensions: cfg.Policy.Extensions,
		Lock:       cfg.Lock.Enabled,
	}
	if store := openJournal(cfg, logger); store != nil {
		defer store.Close()
		opts.Recorder = store
	}
	driver, err := pipeline.New(fr, opts, logger)
	if err != nil {
		return err
	}

	if !watchMode {
		summary, err := driver.Run(cmd.Context())
		printSummary(out, printer, layout, summary)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), printer.Sprintf(i18n.MsgProgramError))
		}
		return err
	}

	fmt.Fprintln(out, printer.Sprintf(i18n.MsgWatching, layout.Working))
	var total pipeline.Summary
	w := watch.New(layout.Working, cfg.Policy.Extensions, cfg.WatchDebounce(), logger)
	err = w.Run(cmd.Context(), func(runCtx context.Context) error {
		summary, runErr := driver.Run(runCtx)
		total.Add(summary)
		if summary.Passes > 0 {
			printSummary(out, printer, layout, summary)
		}
		return runErr
	})
	if total.Processed > 0 || total.Failed > 0 {
		printSummary(out, printer, layout, total)
	}
	return err
}

// checkReadiness fails on required preflight checks and logs optional ones.
func checkReadiness(ctx context.Context, cfg *config.Config, layout workdir.Layout, logger *slog.Logger) error {
	results := preflight.RunAll(ctx, cfg, layout, nil)
	for _, r := range results {
		if !r.Passed && r.Optional {
			logging.WarnWithContext(logger, "optional preflight check failed", "preflight_warning",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldErrorHint, "run mp4press check for details"),
			)
		}
	}
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}

func openJournal(cfg *config.Config, logger *slog.Logger) *journal.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logging.WarnWithContext(logger, "journal unavailable", "journal_open_failed",
			logging.String("path", cfg.Journal.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not be recorded in history"),
		)
		return nil
	}
	logger.Debug("journal opened", logging.String("path", store.Path()))
	return store
}

func printSummary(out io.Writer, printer *i18n.Printer, layout workdir.Layout, s pipeline.Summary) {
	if s.Passes == 0 && s.Processed == 0 && s.Failed == 0 {
		fmt.Fprintln(out, printer.Sprintf(i18n.MsgNoFiles, layout.Working))
		return
	}
	rows := [][]string{
		{printer.Sprintf(i18n.MsgLabelProcessed), fmt.Sprint(s.Processed)},
		{printer.Sprintf(i18n.MsgLabelDone), fmt.Sprint(s.Done)},
		{printer.Sprintf(i18n.MsgLabelCompress), fmt.Sprint(s.Compressed)},
		{printer.Sprintf(i18n.MsgLabelErrored), fmt.Sprint(s.Errored)},
		{printer.Sprintf(i18n.MsgLabelFailed), fmt.Sprint(s.Failed)},
		{printer.Sprintf(i18n.MsgLabelSaved), formatSaved(s.SpaceSaved())},
		{printer.Sprintf(i18n.MsgLabelElapsed), s.Elapsed.Round(time.Second).String()},
	}
	columns := []column{leftColumn(printer.Sprintf(i18n.MsgLabelMetric)), rightColumn(printer.Sprintf(i18n.MsgLabelValue))}
	fmt.Fprintln(out, renderTable(columns, rows, false))
	fmt.Fprintln(out, printer.Sprintf(i18n.MsgComplete, s.Processed))
	if s.Failed > 0 {
		fmt.Fprintln(out, printer.Sprintf(i18n.MsgFailedFiles, s.Failed))
	}
}

func formatSaved(saved int64) string {
	if saved < 0 {
		return "-" + humanize.IBytes(uint64(-saved))
	}
	return humanize.IBytes(uint64(saved))
}
