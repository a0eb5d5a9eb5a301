package workdir_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mp4press/internal/config"
	"mp4press/internal/logging"
	"mp4press/internal/workdir"
)

func TestFromConfigResolvesRelativeAndAbsoluteRoles(t *testing.T) {
	base := t.TempDir()
	archive := filepath.Join(t.TempDir(), "archive")

	cfg := config.Default()
	cfg.Paths.WorkingDir = base
	cfg.Paths.ProcessedDir = archive

	layout, err := workdir.FromConfig(&cfg)
	if err != nil {
		t.Fatalf("FromConfig returned error: %v", err)
	}
	if layout.Working != base {
		t.Fatalf("unexpected working dir %q", layout.Working)
	}
	if layout.Done != filepath.Join(base, "Done") {
		t.Fatalf("unexpected done dir %q", layout.Done)
	}
	if layout.Processed != archive {
		t.Fatalf("expected absolute processed dir kept, got %q", layout.Processed)
	}
	if got := layout.Path(workdir.RoleError, "broken.mp4"); got != filepath.Join(base, "Error", "broken.mp4") {
		t.Fatalf("unexpected error path %q", got)
	}
	if got := layout.Path(workdir.RoleWorking, "clip.mp4"); got != filepath.Join(base, "clip.mp4") {
		t.Fatalf("unexpected working path %q", got)
	}
}

func TestEnsureDirectoriesCreatesMissingRoles(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "Done"), 0o755); err != nil {
		t.Fatal(err)
	}
	layout := workdir.Layout{
		Working:   base,
		Done:      filepath.Join(base, "Done"),
		Processed: filepath.Join(base, "Processed"),
		Error:     filepath.Join(base, "Error"),
	}
	if err := layout.EnsureDirectories(logging.NewNop()); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{layout.Done, layout.Processed, layout.Error} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, got %v", dir, err)
		}
	}
}

func TestEnsureDirectoriesFailsForMissingWorkingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	layout := workdir.Layout{Working: missing, Done: filepath.Join(missing, "Done"), Processed: filepath.Join(missing, "Processed"), Error: filepath.Join(missing, "Error")}
	if err := layout.EnsureDirectories(nil); err == nil {
		t.Fatal("expected error for missing working directory")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatal("working directory must not be created implicitly")
	}
}

func TestLockIsExclusive(t *testing.T) {
	layout := workdir.Layout{Working: t.TempDir()}

	release, err := layout.Lock()
	if err != nil {
		t.Fatalf("first Lock returned error: %v", err)
	}

	if _, err := layout.Lock(); !errors.Is(err, workdir.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	if err := release(); err != nil {
		t.Fatalf("release returned error: %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("second release returned error: %v", err)
	}

	again, err := layout.Lock()
	if err != nil {
		t.Fatalf("Lock after release returned error: %v", err)
	}
	_ = again()
}

func TestFromConfigRejectsOverlappingRoles(t *testing.T) {
	cases := map[string]func(cfg *config.Config){
		"done is working":        func(cfg *config.Config) { cfg.Paths.DoneDir = cfg.Paths.WorkingDir },
		"error is working slash": func(cfg *config.Config) { cfg.Paths.ErrorDir = cfg.Paths.WorkingDir + "/" },
		"relative and absolute": func(cfg *config.Config) {
			cfg.Paths.ProcessedDir = filepath.Join(cfg.Paths.WorkingDir, "Done")
		},
		"two absolute": func(cfg *config.Config) {
			shared := filepath.Join(t.TempDir(), "shared")
			cfg.Paths.DoneDir = shared
			cfg.Paths.ErrorDir = shared + "/."
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.WorkingDir = t.TempDir()
			mutate(&cfg)
			if _, err := workdir.FromConfig(&cfg); !errors.Is(err, workdir.ErrOverlappingRoles) {
				t.Fatalf("expected ErrOverlappingRoles, got %v", err)
			}
		})
	}
}

func TestValidateResolvesSymlinkedRoleDirectory(t *testing.T) {
	base := t.TempDir()
	done := filepath.Join(base, "Done")
	if err := os.Mkdir(done, 0o755); err != nil {
		t.Fatal(err)
	}
	alias := filepath.Join(t.TempDir(), "finished")
	if err := os.Symlink(done, alias); err != nil {
		t.Fatal(err)
	}
	layout := workdir.Layout{
		Working:   base,
		Done:      done,
		Processed: filepath.Join(base, "Processed"),
		Error:     alias,
	}
	if err := layout.Validate(); !errors.Is(err, workdir.ErrOverlappingRoles) {
		t.Fatalf("expected ErrOverlappingRoles for symlinked alias, got %v", err)
	}

	layout.Error = filepath.Join(base, "Error")
	if err := layout.Validate(); err != nil {
		t.Fatalf("expected distinct layout to validate, got %v", err)
	}
}

func TestValidateRequiresEveryRole(t *testing.T) {
	layout := workdir.Layout{Working: t.TempDir(), Done: "/tmp/a", Processed: "/tmp/b"}
	if err := layout.Validate(); err == nil {
		t.Fatal("expected error for missing error directory")
	}
}
