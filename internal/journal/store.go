package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one journal row.
type Entry struct {
	ID             int64
	RunID          string
	FileName       string
	Disposition    string
	DecisionReason string
	// Outcome is the router result: done, compressed, error or failed.
	Outcome        string
	Width          int
	Height         int
	OriginalBytes  int64
	OutputBytes    int64
	Destination    string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// NewRunID returns a fresh identifier for a pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open creates or connects to the journal at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends e to the journal.
func (s *Store) Record(ctx context.Context, e Entry) error {
	ctx = ensureContext(ctx)
	if e.RunID == "" || e.FileName == "" {
		return errors.New("journal entry requires run id and file name")
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = e.FinishedAt
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO entries (
			run_id, file_name, disposition, decision_reason, outcome, width, height,
			original_bytes, output_bytes, destination, error_message, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.RunID, e.FileName, e.Disposition, e.DecisionReason, e.Outcome, e.Width, e.Height,
			e.OriginalBytes, e.OutputBytes, e.Destination, e.ErrorMessage,
			formatTime(e.StartedAt), formatTime(e.FinishedAt),
		)
		return err
	})
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, run_id, file_name, disposition, decision_reason, outcome,
		width, height, original_bytes, output_bytes, destination, error_message, started_at, finished_at
		FROM entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                   Entry
			startedRaw, doneRaw string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.FileName, &e.Disposition, &e.DecisionReason, &e.Outcome,
			&e.Width, &e.Height, &e.OriginalBytes, &e.OutputBytes, &e.Destination, &e.ErrorMessage,
			&startedRaw, &doneRaw); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if t, err := parseTimeString(startedRaw); err == nil {
			e.StartedAt = t
		}
		if t, err := parseTimeString(doneRaw); err == nil {
			e.FinishedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByOutcome tallies entries for a run.
func (s *Store) CountByOutcome(ctx context.Context, runID string) (map[string]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT outcome, COUNT(1) FROM entries WHERE run_id = ? GROUP BY outcome", runID)
	if err != nil {
		return nil, fmt.Errorf("count journal outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
