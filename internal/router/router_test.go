package router

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mp4press/internal/config"
	"mp4press/internal/fileutil"
	"mp4press/internal/logging"
	"mp4press/internal/media"
	"mp4press/internal/policy"
	"mp4press/internal/scan"
	"mp4press/internal/transcode"
	"mp4press/internal/workdir"
)

type fakeInspector map[string]media.Info

func (f fakeInspector) Inspect(_ context.Context, path string) media.Info {
	if info, ok := f[filepath.Base(path)]; ok {
		return info
	}
	return media.Invalid("no video stream")
}

type fakeTranscoder struct {
	requests []transcode.Request
	// outputSize < 0 writes nothing.
	outputSize int
	err        error
	cancel     context.CancelFunc
}

func (f *fakeTranscoder) Transcode(_ context.Context, req transcode.Request) error {
	f.requests = append(f.requests, req)
	if f.outputSize >= 0 {
		if err := os.WriteFile(req.Output, bytes.Repeat([]byte{'x'}, f.outputSize), 0o644); err != nil {
			return err
		}
	}
	if f.cancel != nil {
		f.cancel()
	}
	return f.err
}

func newLayout(t *testing.T) workdir.Layout {
	t.Helper()
	base := t.TempDir()
	layout := workdir.Layout{
		Working:   base,
		Done:      filepath.Join(base, "Done"),
		Processed: filepath.Join(base, "Processed"),
		Error:     filepath.Join(base, "Error"),
	}
	if err := layout.EnsureDirectories(nil); err != nil {
		t.Fatal(err)
	}
	return layout
}

func newRouter(t *testing.T, layout workdir.Layout, force bool, inspector media.Inspector, tc transcode.Transcoder, onConflict string) *Router {
	t.Helper()
	r, err := New(Settings{
		Layout:         layout,
		ForceCompress:  force,
		Limits:         policy.DefaultLimits(),
		OnConflict:     onConflict,
		MinOutputBytes: 1,
	}, inspector, tc, logging.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return r
}

func addCandidate(t *testing.T, layout workdir.Layout, name, content string) scan.Candidate {
	t.Helper()
	path := layout.Path(workdir.RoleWorking, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return scan.Candidate{Name: name, Path: path, Size: int64(len(content))}
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, got %v", path, err)
	}
}

func valid(w, h int) media.Info { return media.Info{Valid: true, Width: w, Height: h} }

func TestRouteCompressesLandscape(t *testing.T) {
	layout := newLayout(t)
	tc := &fakeTranscoder{outputSize: 40}
	r := newRouter(t, layout, false, fakeInspector{"clip.mp4": valid(1920, 1080)}, tc, config.ConflictOverwrite)
	c := addCandidate(t, layout, "clip.mp4", strings.Repeat("o", 100))

	out, err := r.Route(context.Background(), c)
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if len(tc.requests) != 1 {
		t.Fatalf("expected exactly one transcode, got %d", len(tc.requests))
	}
	req := tc.requests[0]
	if req.Width != 1280 || req.Height != 720 {
		t.Fatalf("expected 1280x720 target, got %dx%d", req.Width, req.Height)
	}
	if req.Input != c.Path || req.Output != layout.Path(workdir.RoleDone, "clip.mp4") {
		t.Fatalf("unexpected request paths %+v", req)
	}
	if out.Result != ResultCompressed || out.OutputBytes != 40 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if ratio := out.Ratio(); ratio < 0.599 || ratio > 0.601 {
		t.Fatalf("expected ratio 0.6, got %v", ratio)
	}
	assertMissing(t, c.Path)
	assertExists(t, layout.Path(workdir.RoleProcessed, "clip.mp4"))
	assertExists(t, layout.Path(workdir.RoleDone, "clip.mp4"))
	if out.Destination != layout.Path(workdir.RoleProcessed, "clip.mp4") {
		t.Fatalf("unexpected destination %s", out.Destination)
	}
}

func TestRouteCompressesPortraitAndSquareToPortraitFrame(t *testing.T) {
	for name, info := range map[string]media.Info{"tall.mp4": valid(1080, 1920), "square.mp4": valid(1000, 1000)} {
		layout := newLayout(t)
		tc := &fakeTranscoder{outputSize: 1}
		r := newRouter(t, layout, false, fakeInspector{name: info}, tc, config.ConflictOverwrite)
		if _, err := r.Route(context.Background(), addCandidate(t, layout, name, "data")); err != nil {
			t.Fatalf("%s: Route returned error: %v", name, err)
		}
		if len(tc.requests) != 1 || tc.requests[0].Width != 720 || tc.requests[0].Height != 1280 {
			t.Fatalf("%s: expected 720x1280 target, got %+v", name, tc.requests)
		}
	}
}

func TestRouteLogsProbeMetadataWithDecision(t *testing.T) {
	layout := newLayout(t)
	logPath := filepath.Join(t.TempDir(), "router.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}
	info := media.Info{Valid: true, Width: 640, Height: 480, VideoCodec: "hevc", Duration: 90, BitRate: 2500000, AudioStreams: 2}
	r, err := New(Settings{Layout: layout, Limits: policy.DefaultLimits()}, fakeInspector{"small.mp4": info}, &fakeTranscoder{}, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Route(context.Background(), addCandidate(t, layout, "small.mp4", "bytes")); err != nil {
		t.Fatalf("Route returned error: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"routing decision", "codec=hevc", "duration=1m30s", `bitrate="2.5 Mbps"`, "audio_streams=2", "force=false"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %q in log:\n%s", want, content)
		}
	}
}

func TestRouteMovesSmallFileUnchanged(t *testing.T) {
	layout := newLayout(t)
	tc := &fakeTranscoder{}
	r := newRouter(t, layout, false, fakeInspector{"small.mp4": valid(640, 480)}, tc, config.ConflictOverwrite)
	c := addCandidate(t, layout, "small.mp4", "original-bytes")

	out, err := r.Route(context.Background(), c)
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if len(tc.requests) != 0 {
		t.Fatal("transcode must not run for small files")
	}
	if out.Result != ResultDone || out.Decision.Reason != policy.ReasonWithinLimit {
		t.Fatalf("unexpected outcome %+v", out)
	}
	got, err := os.ReadFile(layout.Path(workdir.RoleDone, "small.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original-bytes" {
		t.Fatalf("expected byte-identical move, got %q", got)
	}
	assertMissing(t, c.Path)
}

func TestRouteShortSideAtLimitIsDone(t *testing.T) {
	layout := newLayout(t)
	tc := &fakeTranscoder{}
	r := newRouter(t, layout, false, fakeInspector{"edge.mp4": valid(720, 1280)}, tc, config.ConflictOverwrite)

	out, err := r.Route(context.Background(), addCandidate(t, layout, "edge.mp4", "e"))
	if err != nil || out.Result != ResultDone {
		t.Fatalf("expected done, got %+v (%v)", out, err)
	}
	if len(tc.requests) != 0 {
		t.Fatal("transcode must not run at the inclusive boundary")
	}
	assertExists(t, layout.Path(workdir.RoleDone, "edge.mp4"))
}

func TestRouteInvalidGoesToError(t *testing.T) {
	layout := newLayout(t)
	tc := &fakeTranscoder{}
	r := newRouter(t, layout, true, fakeInspector{}, tc, config.ConflictOverwrite)
	c := addCandidate(t, layout, "broken.mp4", "junk")

	out, err := r.Route(context.Background(), c)
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if out.Result != ResultError || out.Reason != "no video stream" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(tc.requests) != 0 {
		t.Fatal("transcode must not run for invalid files")
	}
	assertExists(t, layout.Path(workdir.RoleError, "broken.mp4"))
	assertMissing(t, c.Path)
}

func TestRouteForceCompressesSmallFile(t *testing.T) {
	layout := newLayout(t)
	tc := &fakeTranscoder{outputSize: 2}
	r := newRouter(t, layout, true, fakeInspector{"small.mp4": valid(640, 480)}, tc, config.ConflictOverwrite)

	out, err := r.Route(context.Background(), addCandidate(t, layout, "small.mp4", "abcd"))
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if out.Result != ResultCompressed || out.Decision.Reason != policy.ReasonForced {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(tc.requests) != 1 || tc.requests[0].Width != 1280 {
		t.Fatalf("expected forced landscape transcode, got %+v", tc.requests)
	}
	assertExists(t, layout.Path(workdir.RoleProcessed, "small.mp4"))
}

func TestRouteZeroByteOutputIsError(t *testing.T) {
	layout := newLayout(t)
	tc := &fakeTranscoder{outputSize: 0}
	r := newRouter(t, layout, false, fakeInspector{"clip.mp4": valid(1920, 1080)}, tc, config.ConflictOverwrite)
	c := addCandidate(t, layout, "clip.mp4", "source")

	out, err := r.Route(context.Background(), c)
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if out.Result != ResultError || !strings.Contains(out.Reason, ErrZeroByteOutput.Error()) {
		t.Fatalf("unexpected outcome %+v", out)
	}
	assertMissing(t, layout.Path(workdir.RoleDone, "clip.mp4"))
	assertExists(t, layout.Path(workdir.RoleError, "clip.mp4"))
	assertMissing(t, layout.Path(workdir.RoleProcessed, "clip.mp4"))
}

func TestRouteTranscodeFailureCleansPartialOutput(t *testing.T) {
	layout := newLayout(t)
	tc := &fakeTranscoder{outputSize: 12, err: errors.New("ffmpeg failed: exit status 1")}
	r := newRouter(t, layout, false, fakeInspector{"clip.mp4": valid(3840, 2160)}, tc, config.ConflictOverwrite)
	c := addCandidate(t, layout, "clip.mp4", "source")

	out, err := r.Route(context.Background(), c)
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if out.Result != ResultError || !strings.Contains(out.Reason, "exit status 1") {
		t.Fatalf("unexpected outcome %+v", out)
	}
	assertMissing(t, layout.Path(workdir.RoleDone, "clip.mp4"))
	got, err := os.ReadFile(layout.Path(workdir.RoleError, "clip.mp4"))
	if err != nil || string(got) != "source" {
		t.Fatalf("expected untouched original in error dir, got %q (%v)", got, err)
	}
}

func TestRouteMissingOutputIsError(t *testing.T) {
	layout := newLayout(t)
	tc := &fakeTranscoder{outputSize: -1}
	r := newRouter(t, layout, false, fakeInspector{"clip.mp4": valid(1920, 1080)}, tc, config.ConflictOverwrite)

	out, err := r.Route(context.Background(), addCandidate(t, layout, "clip.mp4", "source"))
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if out.Result != ResultError || !strings.Contains(out.Reason, ErrOutputMissing.Error()) {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestRouteCancelledTranscodeLeavesOriginal(t *testing.T) {
	layout := newLayout(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tc := &fakeTranscoder{outputSize: 5, err: context.Canceled, cancel: cancel}
	r := newRouter(t, layout, false, fakeInspector{"clip.mp4": valid(1920, 1080)}, tc, config.ConflictOverwrite)
	c := addCandidate(t, layout, "clip.mp4", "source")

	out, err := r.Route(ctx, c)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if out.Result != ResultFailed {
		t.Fatalf("expected failed result, got %s", out.Result)
	}
	assertExists(t, c.Path)
	assertMissing(t, layout.Path(workdir.RoleDone, "clip.mp4"))
	assertMissing(t, layout.Path(workdir.RoleError, "clip.mp4"))
}

func TestRouteConflictPolicies(t *testing.T) {
	t.Run("overwrite", func(t *testing.T) {
		layout := newLayout(t)
		if err := os.WriteFile(layout.Path(workdir.RoleDone, "small.mp4"), []byte("stale"), 0o644); err != nil {
			t.Fatal(err)
		}
		r := newRouter(t, layout, false, fakeInspector{"small.mp4": valid(640, 480)}, &fakeTranscoder{}, config.ConflictOverwrite)
		if _, err := r.Route(context.Background(), addCandidate(t, layout, "small.mp4", "fresh")); err != nil {
			t.Fatal(err)
		}
		got, _ := os.ReadFile(layout.Path(workdir.RoleDone, "small.mp4"))
		if string(got) != "fresh" {
			t.Fatalf("expected overwrite, got %q", got)
		}
	})

	t.Run("fail", func(t *testing.T) {
		layout := newLayout(t)
		if err := os.WriteFile(layout.Path(workdir.RoleDone, "small.mp4"), []byte("stale"), 0o644); err != nil {
			t.Fatal(err)
		}
		r := newRouter(t, layout, false, fakeInspector{"small.mp4": valid(640, 480)}, &fakeTranscoder{}, config.ConflictFail)
		c := addCandidate(t, layout, "small.mp4", "fresh")
		out, err := r.Route(context.Background(), c)
		if !errors.Is(err, fileutil.ErrDestinationExists) {
			t.Fatalf("expected ErrDestinationExists, got %v", err)
		}
		if out.Result != ResultFailed {
			t.Fatalf("expected failed result, got %s", out.Result)
		}
		assertExists(t, c.Path)
	})

	t.Run("fail before transcode", func(t *testing.T) {
		layout := newLayout(t)
		if err := os.WriteFile(layout.Path(workdir.RoleDone, "clip.mp4"), []byte("stale"), 0o644); err != nil {
			t.Fatal(err)
		}
		tc := &fakeTranscoder{outputSize: 1}
		r := newRouter(t, layout, false, fakeInspector{"clip.mp4": valid(1920, 1080)}, tc, config.ConflictFail)
		if _, err := r.Route(context.Background(), addCandidate(t, layout, "clip.mp4", "src")); !errors.Is(err, fileutil.ErrDestinationExists) {
			t.Fatalf("expected ErrDestinationExists, got %v", err)
		}
		if len(tc.requests) != 0 {
			t.Fatal("transcode must not run when the output slot is taken")
		}
	})

	t.Run("suffix", func(t *testing.T) {
		layout := newLayout(t)
		if err := os.WriteFile(layout.Path(workdir.RoleDone, "small.mp4"), []byte("stale"), 0o644); err != nil {
			t.Fatal(err)
		}
		r := newRouter(t, layout, false, fakeInspector{"small.mp4": valid(640, 480)}, &fakeTranscoder{}, config.ConflictSuffix)
		out, err := r.Route(context.Background(), addCandidate(t, layout, "small.mp4", "fresh"))
		if err != nil {
			t.Fatal(err)
		}
		want := layout.Path(workdir.RoleDone, "small (1).mp4")
		if out.Destination != want {
			t.Fatalf("expected %s, got %s", want, out.Destination)
		}
		got, _ := os.ReadFile(layout.Path(workdir.RoleDone, "small.mp4"))
		if string(got) != "stale" {
			t.Fatal("existing file must be preserved under suffix policy")
		}
	})
}

func TestRouteMoveFailureIsReported(t *testing.T) {
	layout := newLayout(t)
	if err := os.Remove(layout.Error); err != nil {
		t.Fatal(err)
	}
	r := newRouter(t, layout, false, fakeInspector{}, &fakeTranscoder{}, config.ConflictOverwrite)
	c := addCandidate(t, layout, "broken.mp4", "junk")

	out, err := r.Route(context.Background(), c)
	if err == nil {
		t.Fatal("expected move error")
	}
	if out.Result != ResultFailed {
		t.Fatalf("expected failed result, got %s", out.Result)
	}
	assertExists(t, c.Path)
}

func TestNewValidatesCollaborators(t *testing.T) {
	layout := workdir.Layout{Working: t.TempDir()}
	if _, err := New(Settings{Layout: layout}, nil, &fakeTranscoder{}, nil); err == nil {
		t.Fatal("expected error without inspector")
	}
	if _, err := New(Settings{Layout: layout}, fakeInspector{}, nil, nil); err == nil {
		t.Fatal("expected error without transcoder")
	}
	r, err := New(Settings{Layout: layout}, fakeInspector{}, &fakeTranscoder{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s := r.Settings(); s.Limits != policy.DefaultLimits() || s.OnConflict != config.ConflictOverwrite || s.MinOutputBytes != 1 {
		t.Fatalf("expected defaults applied, got %+v", s)
	}
}
