package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"mp4press/internal/logging"
)

func TestMatchesFiltersEvents(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, []string{"MP4"}, time.Second, logging.NewNop())

	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: filepath.Join(dir, "clip.mp4"), Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "clip.MP4"), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "clip.mp4"), Op: fsnotify.Rename}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "clip.mp4"), Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "Done", "clip.mp4"), Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		if got := w.matches(tt.event); got != tt.want {
			t.Fatalf("matches(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRunTriggersAfterNewFile(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, []string{".mp4"}, 30*time.Millisecond, logging.NewNop())

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			runs.Add(1)
			return nil
		})
	}()

	waitFor(t, func() bool { return runs.Load() == 1 })

	if err := os.WriteFile(filepath.Join(dir, "new.mp4"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return runs.Load() >= 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRunFailsForMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), []string{".mp4"}, time.Second, nil)
	err := w.Run(context.Background(), func(context.Context) error {
		t.Fatal("run must not be called")
		return nil
	})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
