package media

import (
	"context"
	"fmt"
	"strings"

	"mp4press/internal/media/ffprobe"
)

// Info is the result of inspecting one file. Duration is in seconds and
// BitRate in bits per second; both are 0 when ffprobe does not report them.
type Info struct {
	Valid        bool
	Width        int
	Height       int
	Reason       string
	VideoCodec   string
	Duration     float64
	BitRate      int64
	AudioStreams int
}

// ShortSide returns min(Width, Height).
func (i Info) ShortSide() int {
	if i.Width < i.Height {
		return i.Width
	}
	return i.Height
}

// Invalid builds an Info describing an unusable file.
func Invalid(reason string) Info {
	return Info{Valid: false, Reason: reason}
}

// Inspector reports validity and dimensions for a file.
type Inspector interface {
	Inspect(ctx context.Context, path string) Info
}

// ProbeInspector inspects files with ffprobe.
type ProbeInspector struct {
	binary string
	run    ffprobe.Runner
}

// NewProbeInspector constructs an inspector. A nil runner executes the binary.
func NewProbeInspector(binary string, run ffprobe.Runner) *ProbeInspector {
	if run == nil {
		run = ffprobe.ExecRunner
	}
	return &ProbeInspector{binary: strings.TrimSpace(binary), run: run}
}

// Inspect probes path. Every failure mode collapses into Valid=false.
func (p *ProbeInspector) Inspect(ctx context.Context, path string) Info {
	result, err := ffprobe.InspectWith(ctx, p.run, p.binary, path)
	if err != nil {
		return Invalid(err.Error())
	}
	return FromProbe(result)
}

// FromProbe converts parsed ffprobe output into Info.
func FromProbe(result ffprobe.Result) Info {
	video, ok := result.VideoStream()
	if !ok {
		return Invalid("no video stream")
	}
	if video.Width <= 0 || video.Height <= 0 {
		return Invalid(fmt.Sprintf("invalid video dimensions %dx%d", video.Width, video.Height))
	}
	return Info{
		Valid:      true,
		Width:      video.Width,
		Height:     video.Height,
		VideoCodec:   video.CodecName,
		Duration:     result.DurationSeconds(),
		BitRate:      result.BitRate(),
		AudioStreams: result.AudioStreamCount(),
	}
}
