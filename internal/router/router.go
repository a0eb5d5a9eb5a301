package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"mp4press/internal/config"
	"mp4press/internal/fileutil"
	"mp4press/internal/logging"
	"mp4press/internal/media"
	"mp4press/internal/policy"
	"mp4press/internal/scan"
	"mp4press/internal/transcode"
	"mp4press/internal/workdir"
)

var (
	// ErrZeroByteOutput marks a transcode that reported success but wrote
	// less than the configured minimum.
	ErrZeroByteOutput = errors.New("transcode produced an empty output")
	// ErrOutputMissing marks a transcode that reported success but wrote nothing.
	ErrOutputMissing = errors.New("transcode output missing")
)

// Result is the terminal state of a routed file.
type Result string

const (
	ResultDone       Result = "done"
	ResultCompressed Result = "compressed"
	ResultError      Result = "error"
	ResultFailed     Result = "failed"
)

// Settings is the immutable per-run configuration.
type Settings struct {
	Layout         workdir.Layout
	ForceCompress  bool
	Limits         policy.Limits
	OnConflict     string
	MinOutputBytes int64
}

// SettingsFromConfig builds Settings for layout from cfg.
func SettingsFromConfig(cfg *config.Config, layout workdir.Layout) Settings {
	return Settings{
		Layout:        layout,
		ForceCompress: cfg.Policy.ForceCompress,
		Limits: policy.Limits{
			ShortSideLimit: cfg.Policy.ShortSideLimit,
			LongSide:       cfg.Policy.LongSide,
		},
		OnConflict:     cfg.Routing.OnConflict,
		MinOutputBytes: cfg.Routing.MinOutputBytes,
	}
}

// Outcome describes what Route did with one file.
type Outcome struct {
	File          string
	Info          media.Info
	Decision      policy.Decision
	Result        Result
	Destination   string
	Output        string
	OriginalBytes int64
	OutputBytes   int64
	// Reason explains an Error result (probe or transcode failure).
	Reason     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Ratio returns (original-compressed)/original for compressed files.
func (o Outcome) Ratio() float64 {
	if o.Result != ResultCompressed || o.OriginalBytes <= 0 {
		return 0
	}
	return float64(o.OriginalBytes-o.OutputBytes) / float64(o.OriginalBytes)
}

// Router routes files one at a time.
type Router struct {
	settings   Settings
	inspector  media.Inspector
	transcoder transcode.Transcoder
	logger     *slog.Logger
}

// New constructs a Router.
func New(settings Settings, inspector media.Inspector, transcoder transcode.Transcoder, logger *slog.Logger) (*Router, error) {
	if inspector == nil {
		return nil, errors.New("router: inspector required")
	}
	if transcoder == nil {
		return nil, errors.New("router: transcoder required")
	}
	if settings.Layout.Working == "" {
		return nil, errors.New("router: working directory required")
	}
	if settings.Limits.ShortSideLimit <= 0 || settings.Limits.LongSide <= 0 {
		settings.Limits = policy.DefaultLimits()
	}
	if settings.OnConflict == "" {
		settings.OnConflict = config.ConflictOverwrite
	}
	if settings.MinOutputBytes <= 0 {
		settings.MinOutputBytes = 1
	}
	return &Router{
		settings:   settings,
		inspector:  inspector,
		transcoder: transcoder,
		logger:     logging.NewComponentLogger(logger, "router"),
	}, nil
}

// Settings returns the settings the router was built with.
func (r *Router) Settings() Settings {
	return r.settings
}

// Route drives c through its lifecycle. A nil error means the file reached a
// terminal directory. A non-nil error means a filesystem operation failed or
// ctx was cancelled; the returned Outcome then has Result ResultFailed.
func (r *Router) Route(ctx context.Context, c scan.Candidate) (Outcome, error) {
	out := Outcome{File: c.Name, OriginalBytes: c.Size, StartedAt: time.Now()}
	logger := r.logger.With(logging.File(c.Name))

	if err := ctx.Err(); err != nil {
		return r.fail(out, err)
	}

	out.Info = r.inspector.Inspect(ctx, c.Path)
	if err := ctx.Err(); err != nil {
		return r.fail(out, err)
	}
	out.Decision = policy.Decide(out.Info, r.settings.ForceCompress, r.settings.Limits)

	attrs := logging.DecisionAttrs("disposition", out.Decision.Disposition.String(), out.Decision.Reason)
	attrs = append(attrs, logging.Bool("force", r.settings.ForceCompress))
	if out.Info.Valid {
		attrs = append(attrs,
			logging.Int("width", out.Info.Width),
			logging.Int("height", out.Info.Height),
			logging.String("codec", out.Info.VideoCodec),
			logging.Duration("duration", time.Duration(out.Info.Duration*float64(time.Second))),
			logging.String("bitrate", humanize.SI(float64(out.Info.BitRate), "bps")),
			logging.Int("audio_streams", out.Info.AudioStreams),
		)
	}
	logger.Debug("routing decision", logging.Args(attrs...)...)

	switch out.Decision.Disposition {
	case policy.MoveToError:
		out.Reason = out.Info.Reason
		logging.WarnWithContext(logger, "invalid media file",
			"invalid_media",
			logging.String("reason", out.Info.Reason),
			logging.String(logging.FieldErrorHint, "verify the file plays and contains a video stream"),
			logging.String(logging.FieldImpact, "file moved to error directory"),
		)
		return r.settle(logger, out, c.Path, workdir.RoleError, ResultError)
	case policy.MoveToDone:
		return r.settle(logger, out, c.Path, workdir.RoleDone, ResultDone)
	default:
		return r.compress(ctx, logger, out, c)
	}
}

func (r *Router) compress(ctx context.Context, logger *slog.Logger, out Outcome, c scan.Candidate) (Outcome, error) {
	output, err := r.destination(workdir.RoleDone, c.Name)
	if err != nil {
		return r.fail(out, err)
	}
	out.Output = output

	width, height := policy.TargetFrame(out.Info.Width, out.Info.Height, r.settings.Limits)
	logger.Info("compressing",
		logging.Int("width", out.Info.Width),
		logging.Int("height", out.Info.Height),
		logging.Int("target_width", width),
		logging.Int("target_height", height),
		logging.String("reason", out.Decision.Reason),
		logging.String(logging.FieldEventType, "transcode_start"),
	)

	started := time.Now()
	err = r.transcoder.Transcode(ctx, transcode.Request{Input: c.Path, Output: output, Width: width, Height: height})
	if err == nil {
		out.OutputBytes, err = r.checkOutput(output)
	}
	if err != nil {
		r.cleanup(logger, output)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return r.fail(out, fmt.Errorf("transcode interrupted: %w", ctxErr))
		}
		out.Reason = err.Error()
		out.OutputBytes = 0
		logging.WarnWithContext(logger, "compression failed",
			"transcode_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the ffmpeg output in the error message"),
			logging.String(logging.FieldImpact, "original moved to error directory"),
		)
		return r.settle(logger, out, c.Path, workdir.RoleError, ResultError)
	}

	out.Result = ResultCompressed
	logger.Info("compressed",
		logging.Bytes("original_size", out.OriginalBytes),
		logging.Bytes("compressed_size", out.OutputBytes),
		logging.String("ratio", fmt.Sprintf("%.1f%%", out.Ratio()*100)),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
		logging.String(logging.FieldEventType, "transcode_complete"),
	)
	return r.settle(logger, out, c.Path, workdir.RoleProcessed, ResultCompressed)
}

// settle moves the original into role and records the terminal result.
func (r *Router) settle(logger *slog.Logger, out Outcome, src string, role workdir.Role, result Result) (Outcome, error) {
	dst, err := r.destination(role, out.File)
	if err == nil {
		err = r.move(src, dst)
	}
	if err != nil {
		if result == ResultCompressed {
			logging.WarnWithContext(logger, "compressed output kept but original could not be archived",
				"archive_failed",
				logging.String("output", out.Output),
				logging.Error(err),
				logging.String(logging.FieldImpact, "original remains in working directory"),
			)
		}
		return r.fail(out, fmt.Errorf("move to %s: %w", role, err))
	}
	out.Destination = dst
	out.Result = result
	out.FinishedAt = time.Now()
	logger.Info("file routed",
		logging.String("result", string(result)),
		logging.String("destination", string(role)),
		logging.String(logging.FieldEventType, "move"),
	)
	return out, nil
}

func (r *Router) fail(out Outcome, err error) (Outcome, error) {
	out.Result = ResultFailed
	out.Reason = err.Error()
	out.FinishedAt = time.Now()
	return out, err
}

func (r *Router) checkOutput(path string) (int64, error) {
	size, err := fileutil.FileSize(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOutputMissing, err)
	}
	if size < r.settings.MinOutputBytes {
		return size, fmt.Errorf("%w (%d bytes)", ErrZeroByteOutput, size)
	}
	return size, nil
}

// cleanup removes a failed output. Absence is expected and errors are only logged.
func (r *Router) cleanup(logger *slog.Logger, path string) {
	removed, err := fileutil.RemoveIfExists(path)
	if err != nil {
		logging.WarnWithContext(logger, "failed to remove partial output",
			"cleanup_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the partial file manually"),
			logging.String(logging.FieldImpact, "partial output left in done directory"),
		)
		return
	}
	if removed {
		logger.Debug("removed partial output", logging.String("path", path))
	}
}
