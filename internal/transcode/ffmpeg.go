package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Request describes one transcode.
type Request struct {
	Input  string
	Output string
	Width  int
	Height int
}

// Transcoder produces Output from Input scaled and padded to Width×Height.
type Transcoder interface {
	Transcode(ctx context.Context, req Request) error
}

// Executor abstracts command execution for testability. It returns the
// captured stderr alongside the exit error.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*FFmpeg)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(f *FFmpeg) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// WithCodecs overrides the video and audio encoders.
func WithCodecs(video, audio string) Option {
	return func(f *FFmpeg) {
		if v := strings.TrimSpace(video); v != "" {
			f.videoCodec = v
		}
		if a := strings.TrimSpace(audio); a != "" {
			f.audioCodec = a
		}
	}
}

// WithPadColor sets the fill used for letterbox/pillarbox bars.
func WithPadColor(color string) Option {
	return func(f *FFmpeg) {
		if c := strings.TrimSpace(color); c != "" {
			f.padColor = c
		}
	}
}

// WithTimeout bounds each transcode. Zero waits indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(f *FFmpeg) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// FFmpeg wraps ffmpeg CLI interactions.
type FFmpeg struct {
	binary     string
	videoCodec string
	audioCodec string
	padColor   string
	timeout    time.Duration
	exec       Executor
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*FFmpeg, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	f := &FFmpeg{
		binary:     binary,
		videoCodec: "libx264",
		audioCodec: "aac",
		padColor:   "black",
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Transcode runs ffmpeg for req and waits for it to exit.
func (f *FFmpeg) Transcode(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.Input) == "" || strings.TrimSpace(req.Output) == "" {
		return errors.New("transcode: input and output paths required")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("transcode: invalid target frame %dx%d", req.Width, req.Height)
	}

	runCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	stderr, err := f.exec.Run(runCtx, f.binary, f.BuildArgs(req))
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", f.timeout, err)
		}
		return &Error{Input: req.Input, Err: err, Detail: tail(stderr, stderrTailLines)}
	}
	return nil
}

// BuildArgs returns the ffmpeg argument list for req.
func (f *FFmpeg) BuildArgs(req Request) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-nostdin",
		"-i", req.Input,
		"-c:v", f.videoCodec,
		"-c:a", f.audioCodec,
		"-vf", Filter(req.Width, req.Height, f.padColor),
		req.Output,
	}
}

// Filter returns the scale+pad filter that fits a frame inside w×h and pads
// it to exactly w×h.
func Filter(w, h int, padColor string) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:%s", w, h, w, h, padColor)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}
