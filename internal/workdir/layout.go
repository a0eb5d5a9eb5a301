package workdir

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"mp4press/internal/config"
	"mp4press/internal/logging"
)

// LockFileName is created inside the working directory while a run holds it.
const LockFileName = ".mp4press.lock"

// ErrLocked is returned when another process already holds the working directory.
var ErrLocked = errors.New("working directory is locked by another mp4press run")

// ErrOverlappingRoles is returned when a role directory is the working
// directory or two roles share one directory.
var ErrOverlappingRoles = errors.New("directory roles overlap")

// Role names one of the directories a file can live in.
type Role string

const (
	RoleWorking   Role = "working"
	RoleDone      Role = "done"
	RoleProcessed Role = "processed"
	RoleError     Role = "error"
)

// Layout holds the absolute paths for every directory role.
type Layout struct {
	Working   string
	Done      string
	Processed string
	Error     string
}

// FromConfig resolves role directories against the configured working
// directory. Relative role names become subdirectories of Working.
func FromConfig(cfg *config.Config) (Layout, error) {
	if cfg == nil {
		return Layout{}, errors.New("workdir: config required")
	}
	working := strings.TrimSpace(cfg.Paths.WorkingDir)
	if working == "" {
		return Layout{}, errors.New("workdir: working directory not set")
	}
	working, err := filepath.Abs(working)
	if err != nil {
		return Layout{}, fmt.Errorf("workdir: resolve working directory: %w", err)
	}
	resolve := func(name string) string {
		if filepath.IsAbs(name) {
			return filepath.Clean(name)
		}
		return filepath.Join(working, name)
	}
	layout := Layout{
		Working:   working,
		Done:      resolve(cfg.Paths.DoneDir),
		Processed: resolve(cfg.Paths.ProcessedDir),
		Error:     resolve(cfg.Paths.ErrorDir),
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Validate checks that Done, Processed and Error are set, differ from Working
// and from each other. Paths are compared after cleaning and, for directories
// that already exist, after resolving symlinks. A routed file left in Working
// would be scanned again on every pass.
func (l Layout) Validate() error {
	if strings.TrimSpace(l.Working) == "" {
		return errors.New("workdir: working directory not set")
	}
	working := canonicalDir(l.Working)
	seen := make(map[string]Role, 3)
	for _, role := range []Role{RoleDone, RoleProcessed, RoleError} {
		raw := l.Dir(role)
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("workdir: %s directory not set", role)
		}
		dir := canonicalDir(raw)
		if dir == working {
			return fmt.Errorf("%w: %s directory %s is the working directory", ErrOverlappingRoles, role, raw)
		}
		if other, dup := seen[dir]; dup {
			return fmt.Errorf("%w: %s and %s directories both resolve to %s", ErrOverlappingRoles, other, role, dir)
		}
		seen[dir] = role
	}
	return nil
}

func canonicalDir(path string) string {
	cleaned := filepath.Clean(path)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		return resolved
	}
	return cleaned
}

// Dir returns the directory for a role.
func (l Layout) Dir(role Role) string {
	switch role {
	case RoleDone:
		return l.Done
	case RoleProcessed:
		return l.Processed
	case RoleError:
		return l.Error
	default:
		return l.Working
	}
}

// Path joins name onto the directory for role.
func (l Layout) Path(role Role, name string) string {
	return filepath.Join(l.Dir(role), name)
}

// EnsureDirectories verifies Working exists and creates the other role
// directories when absent.
func (l Layout) EnsureDirectories(logger *slog.Logger) error {
	info, err := os.Stat(l.Working)
	if err != nil {
		return fmt.Errorf("working directory %q: %w", l.Working, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("working directory %q is not a directory", l.Working)
	}
	for _, dir := range []string{l.Done, l.Processed, l.Error} {
		if _, err := os.Stat(dir); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat directory %q: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
		if logger != nil {
			logger.Info("created directory",
				logging.String("dir", filepath.Base(dir)),
				logging.String(logging.FieldEventType, "directory_created"),
			)
		}
	}
	return nil
}

// Lock acquires the working directory lock without blocking. The returned
// release function is safe to call more than once.
func (l Layout) Lock() (func() error, error) {
	lock := flock.New(filepath.Join(l.Working, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, lock.Path())
	}
	released := false
	return func() error {
		if released {
			return nil
		}
		released = true
		if err := lock.Unlock(); err != nil {
			return fmt.Errorf("release lock: %w", err)
		}
		_ = os.Remove(lock.Path())
		return nil
	}, nil
}
