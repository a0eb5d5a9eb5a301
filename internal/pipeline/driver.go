package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mp4press/internal/journal"
	"mp4press/internal/logging"
	"mp4press/internal/router"
	"mp4press/internal/scan"
	"mp4press/internal/workdir"
)

// FileRouter routes a single candidate.
type FileRouter interface {
	Route(ctx context.Context, c scan.Candidate) (router.Outcome, error)
}

// Recorder persists per-file outcomes.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Options configures a Driver.
type Options struct {
	Layout     workdir.Layout
	Extensions []string
	// Lock takes the working directory lock for the duration of Run.
	Lock bool
	// Recorder is optional.
	Recorder Recorder
}

// Driver runs the rescan loop.
type Driver struct {
	opts   Options
	router FileRouter
	logger *slog.Logger
}

// New constructs a Driver.
func New(fr FileRouter, opts Options, logger *slog.Logger) (*Driver, error) {
	if fr == nil {
		return nil, errors.New("pipeline: router required")
	}
	if opts.Layout.Working == "" {
		return nil, errors.New("pipeline: working directory required")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".mp4"}
	}
	return &Driver{
		opts:   opts,
		router: fr,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Run processes the working directory until a scan finds no candidates.
// Per-file failures are logged and counted; only top-level failures (missing
// working directory, uncreatable role directories, lock contention, listing
// errors, cancellation) are returned.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: journal.NewRunID()}
	started := time.Now()

	logger := d.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	if err := d.opts.Layout.EnsureDirectories(logger); err != nil {
		return summary, err
	}
	if d.opts.Lock {
		release, err := d.opts.Layout.Lock()
		if err != nil {
			return summary, err
		}
		defer func() {
			if err := release(); err != nil {
				logging.WarnWithContext(logger, "failed to release working directory lock", "lock_release_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "stale lock file may remain"),
				)
			}
		}()
	}

	logger.Info("pipeline started",
		logging.String("working_dir", d.opts.Layout.Working),
		logging.String(logging.FieldEventType, "run_start"),
	)

	skipped := make(map[string]bool)
	for {
		if err := ctx.Err(); err != nil {
			return d.finish(logger, &summary, started, err)
		}

		candidates, err := scan.ListCandidates(d.opts.Layout.Working, d.opts.Extensions)
		if err != nil {
			return d.finish(logger, &summary, started, fmt.Errorf("scan working directory: %w", err))
		}
		pending := candidates[:0]
		for _, c := range candidates {
			if !skipped[c.Name] {
				pending = append(pending, c)
			}
		}
		if len(pending) == 0 {
			return d.finish(logger, &summary, started, nil)
		}

		summary.Passes++
		passLogger := logger.With(logging.Int(logging.FieldPass, summary.Passes))
		passLogger.Info("scan pass", logging.Int("candidates", len(pending)))

		for i, c := range pending {
			if err := ctx.Err(); err != nil {
				return d.finish(logger, &summary, started, err)
			}
			passLogger.Info("processing",
				logging.File(c.Name),
				logging.String("progress", fmt.Sprintf("%d/%d", i+1, len(pending))),
				logging.Bytes("size", c.Size),
			)

			out, err := d.routeSafely(ctx, c)
			if err != nil && ctx.Err() != nil {
				return d.finish(logger, &summary, started, ctx.Err())
			}
			summary.observe(out, err)
			if err != nil {
				skipped[c.Name] = true
				logging.ErrorWithContext(passLogger, "file processing failed", "file_failed",
					logging.File(c.Name),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "file left in working directory; fix the cause and rerun"),
				)
			}
			d.record(ctx, passLogger, summary.RunID, c, out, err)
		}
	}
}

// routeSafely converts a panic inside the router into an error so one bad
// file cannot abort the run.
func (d *Driver) routeSafely(ctx context.Context, c scan.Candidate) (out router.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = router.Outcome{File: c.Name, OriginalBytes: c.Size, Result: router.ResultFailed}
			err = fmt.Errorf("panic while routing %s: %v", c.Name, r)
		}
	}()
	return d.router.Route(ctx, c)
}

func (d *Driver) record(ctx context.Context, logger *slog.Logger, runID string, c scan.Candidate, out router.Outcome, routeErr error) {
	if d.opts.Recorder == nil {
		return
	}
	entry := journal.Entry{
		RunID:          runID,
		FileName:       c.Name,
		Disposition:    out.Decision.Disposition.String(),
		DecisionReason: out.Decision.Reason,
		Outcome:        string(out.Result),
		Width:          out.Info.Width,
		Height:         out.Info.Height,
		OriginalBytes:  c.Size,
		OutputBytes:    out.OutputBytes,
		Destination:    out.Destination,
		ErrorMessage:   out.Reason,
		StartedAt:      out.StartedAt,
		FinishedAt:     out.FinishedAt,
	}
	if routeErr != nil {
		entry.Outcome = string(router.ResultFailed)
		entry.ErrorMessage = routeErr.Error()
		if out.Decision.Reason == "" {
			entry.Disposition = ""
		}
	}
	if err := d.opts.Recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "failed to record journal entry", "journal_write_failed",
			logging.File(c.Name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "history for this file is incomplete"),
		)
	}
}

func (d *Driver) finish(logger *slog.Logger, summary *Summary, started time.Time, err error) (Summary, error) {
	summary.Elapsed = time.Since(started)
	attrs := []logging.Attr{
		logging.Int("passes", summary.Passes),
		logging.Int("processed", summary.Processed),
		logging.Int("done", summary.Done),
		logging.Int("compressed", summary.Compressed),
		logging.Int("errored", summary.Errored),
		logging.Int("failed", summary.Failed),
		logging.Bytes("space_saved", summary.SpaceSaved()),
		logging.Duration("elapsed", summary.Elapsed.Round(time.Millisecond)),
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err), logging.String(logging.FieldImpact, "remaining files left in working directory"))
		logging.WarnWithContext(logger, "pipeline stopped", "run_stopped", attrs...)
		return *summary, err
	}
	attrs = append(attrs, logging.String(logging.FieldEventType, "run_complete"))
	logger.Info("pipeline complete", logging.Args(attrs...)...)
	return *summary, nil
}
