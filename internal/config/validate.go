package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePolicy(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	if err := c.validateRouting(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkingDir) == "" {
		return errors.New("paths.working_dir must be set")
	}
	names := map[string]string{
		"paths.done_dir":      c.Paths.DoneDir,
		"paths.processed_dir": c.Paths.ProcessedDir,
		"paths.error_dir":     c.Paths.ErrorDir,
	}
	working := filepath.Clean(c.Paths.WorkingDir)
	seen := make(map[string]string, len(names))
	for _, key := range []string{"paths.done_dir", "paths.processed_dir", "paths.error_dir"} {
		value := strings.TrimSpace(names[key])
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
		resolved := filepath.Clean(value)
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(working, resolved)
		}
		if resolved == working {
			return fmt.Errorf("%s must not be the working directory", key)
		}
		if other, dup := seen[resolved]; dup {
			return fmt.Errorf("%s and %s must name different directories", other, key)
		}
		seen[resolved] = key
	}
	return nil
}

func (c *Config) validatePolicy() error {
	if err := ensurePositiveMap(map[string]int{
		"policy.short_side_limit": c.Policy.ShortSideLimit,
		"policy.long_side":        c.Policy.LongSide,
	}); err != nil {
		return err
	}
	if c.Policy.LongSide < c.Policy.ShortSideLimit {
		return errors.New("policy.long_side must be greater than or equal to policy.short_side_limit")
	}
	if len(c.Policy.Extensions) == 0 {
		return errors.New("policy.extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateTranscode() error {
	if strings.TrimSpace(c.Transcode.FFmpegBinary) == "" {
		return errors.New("transcode.ffmpeg_binary must be set")
	}
	if strings.TrimSpace(c.Transcode.FFprobeBinary) == "" {
		return errors.New("transcode.ffprobe_binary must be set")
	}
	if c.Transcode.TimeoutSeconds < 0 {
		return errors.New("transcode.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateRouting() error {
	switch c.Routing.OnConflict {
	case ConflictOverwrite, ConflictFail, ConflictSuffix:
	default:
		return fmt.Errorf("routing.on_conflict: unsupported value %q (want overwrite, fail, or suffix)", c.Routing.OnConflict)
	}
	if c.Routing.MinOutputBytes < 1 {
		return errors.New("routing.min_output_bytes must be positive")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return errors.New("journal.path must be set when journal.enabled is true")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
