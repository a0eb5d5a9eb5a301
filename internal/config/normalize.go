package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePolicy()
	c.normalizeTranscode()
	c.normalizeRouting()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	if c.Watch.DebounceSeconds < 0 {
		c.Watch.DebounceSeconds = 0
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.WorkingDir = strings.TrimSpace(c.Paths.WorkingDir)
	if c.Paths.WorkingDir == "" {
		if c.Paths.WorkingDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("paths.working_dir: %w", err)
		}
	}
	if c.Paths.WorkingDir, err = expandPath(c.Paths.WorkingDir); err != nil {
		return fmt.Errorf("paths.working_dir: %w", err)
	}
	c.Paths.DoneDir = roleDirOrDefault(c.Paths.DoneDir, defaultDoneDir)
	c.Paths.ProcessedDir = roleDirOrDefault(c.Paths.ProcessedDir, defaultProcessedDir)
	c.Paths.ErrorDir = roleDirOrDefault(c.Paths.ErrorDir, defaultErrorDir)
	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// roleDirOrDefault keeps relative role names relative so they resolve against
// whichever working directory the run ends up using.
func roleDirOrDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if strings.HasPrefix(value, "~") {
		if expanded, err := expandPath(value); err == nil {
			return expanded
		}
	}
	return filepath.Clean(value)
}

func (c *Config) normalizePolicy() {
	if len(c.Policy.Extensions) == 0 {
		c.Policy.Extensions = []string{defaultExtension}
		return
	}
	exts := make([]string, 0, len(c.Policy.Extensions))
	seen := make(map[string]struct{}, len(c.Policy.Extensions))
	for _, ext := range c.Policy.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{defaultExtension}
	}
	c.Policy.Extensions = exts
}

func (c *Config) normalizeTranscode() {
	c.Transcode.FFmpegBinary = strings.TrimSpace(c.Transcode.FFmpegBinary)
	if value, ok := os.LookupEnv("MP4PRESS_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Transcode.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.Transcode.FFmpegBinary == "" {
		c.Transcode.FFmpegBinary = defaultFFmpegBinary
	}
	c.Transcode.FFprobeBinary = strings.TrimSpace(c.Transcode.FFprobeBinary)
	if value, ok := os.LookupEnv("MP4PRESS_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Transcode.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.Transcode.FFprobeBinary == "" {
		c.Transcode.FFprobeBinary = defaultFFprobeBinary
	}
	c.Transcode.VideoCodec = strings.TrimSpace(c.Transcode.VideoCodec)
	if c.Transcode.VideoCodec == "" {
		c.Transcode.VideoCodec = defaultVideoCodec
	}
	c.Transcode.AudioCodec = strings.TrimSpace(c.Transcode.AudioCodec)
	if c.Transcode.AudioCodec == "" {
		c.Transcode.AudioCodec = defaultAudioCodec
	}
	c.Transcode.PadColor = strings.TrimSpace(c.Transcode.PadColor)
	if c.Transcode.PadColor == "" {
		c.Transcode.PadColor = defaultPadColor
	}
	if c.Transcode.TimeoutSeconds < 0 {
		c.Transcode.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeRouting() {
	c.Routing.OnConflict = strings.ToLower(strings.TrimSpace(c.Routing.OnConflict))
	if c.Routing.OnConflict == "" {
		c.Routing.OnConflict = ConflictOverwrite
	}
	if c.Routing.MinOutputBytes <= 0 {
		c.Routing.MinOutputBytes = defaultMinOutputBytes
	}
}

func (c *Config) normalizeJournal() error {
	var err error
	c.Journal.Path = strings.TrimSpace(c.Journal.Path)
	if c.Journal.Path == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.FileMaxMB <= 0 {
		c.Logging.FileMaxMB = defaultLogFileMaxMB
	}
	if c.Logging.FileMaxBackups < 0 {
		c.Logging.FileMaxBackups = 0
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
