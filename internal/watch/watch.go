// Package watch reruns the pipeline whenever new candidate files appear in
// the working directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"mp4press/internal/logging"
)

// RunFunc performs one full pipeline run.
type RunFunc func(ctx context.Context) error

// Watcher waits for create/write events on a directory and triggers runs
// after the directory has been quiet for the debounce interval.
type Watcher struct {
	dir      string
	exts     map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// New constructs a Watcher for dir.
func New(dir string, exts []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext != "" {
			allowed[ext] = true
		}
	}
	if debounce <= 0 {
		debounce = time.Second
	}
	return &Watcher{
		dir:      dir,
		exts:     allowed,
		debounce: debounce,
		logger:   logging.NewComponentLogger(logger, "watch"),
	}
}

// Run performs an initial run, then reruns after matching events until ctx
// is cancelled. Run errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, run RunFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching directory",
		logging.String("dir", w.dir),
		logging.Duration("debounce", w.debounce),
		logging.String(logging.FieldEventType, "watch_start"),
	)

	w.runOnce(ctx, run)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stop"))
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if !w.matches(event) {
				continue
			}
			w.logger.Debug("file event", logging.File(filepath.Base(event.Name)), logging.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			logging.WarnWithContext(w.logger, "watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may have been missed"),
			)
		case <-timer.C:
			w.runOnce(ctx, run)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context, run RunFunc) {
	if err := run(ctx); err != nil && ctx.Err() == nil {
		logging.ErrorWithContext(w.logger, "pipeline run failed", "watch_run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the cause; the next file event triggers another run"),
		)
	}
}

// matches reports whether event announces a new or growing candidate file.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return false
	}
	return w.exts[strings.ToLower(filepath.Ext(event.Name))]
}
