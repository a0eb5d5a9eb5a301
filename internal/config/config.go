package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the working directory and the names of the role directories.
type Paths struct {
	WorkingDir   string `toml:"working_dir"`
	DoneDir      string `toml:"done_dir"`
	ProcessedDir string `toml:"processed_dir"`
	ErrorDir     string `toml:"error_dir"`
	LogDir       string `toml:"log_dir"`
}

// Policy contains the resolution limits that drive the disposition decision.
type Policy struct {
	ShortSideLimit int      `toml:"short_side_limit"`
	LongSide       int      `toml:"long_side"`
	ForceCompress  bool     `toml:"force_compress"`
	Extensions     []string `toml:"extensions"`
}

// Transcode contains the external ffmpeg/ffprobe settings.
type Transcode struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	VideoCodec     string `toml:"video_codec"`
	AudioCodec     string `toml:"audio_codec"`
	PadColor       string `toml:"pad_color"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Routing contains file move behaviour.
type Routing struct {
	OnConflict     string `toml:"on_conflict"`
	MinOutputBytes int64  `toml:"min_output_bytes"`
}

// Journal contains configuration for the SQLite run journal.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Watch contains configuration for watch mode.
type Watch struct {
	DebounceSeconds int `toml:"debounce_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string `toml:"format"`
	Level          string `toml:"level"`
	FileMaxMB      int    `toml:"file_max_mb"`
	FileMaxBackups int    `toml:"file_max_backups"`
	RetentionDays  int    `toml:"retention_days"`
}

// Lock contains configuration for the working directory run lock.
type Lock struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for mp4press.
//
// Configuration sections by subsystem:
//   - Paths: working directory, role directory names, log directory
//   - Policy: short side limit, target long side, force mode, extensions
//   - Transcode: ffmpeg/ffprobe binaries, codecs, padding, timeout
//   - Routing: destination collision policy and output validity floor
//   - Journal: SQLite run journal
//   - Watch: debounce for watch mode
//   - Logging: log format, level, rotation
//   - Lock: single-instance lock on the working directory
type Config struct {
	Paths     Paths     `toml:"paths"`
	Policy    Policy    `toml:"policy"`
	Transcode Transcode `toml:"transcode"`
	Routing   Routing   `toml:"routing"`
	Journal   Journal   `toml:"journal"`
	Watch     Watch     `toml:"watch"`
	Logging   Logging   `toml:"logging"`
	Lock      Lock      `toml:"lock"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mp4press/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mp4press.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// WithWorkingDir returns a copy of the config rooted at dir. An empty dir
// leaves the configured working directory in place.
func (c Config) WithWorkingDir(dir string) (Config, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return c, nil
	}
	expanded, err := expandPath(dir)
	if err != nil {
		return c, fmt.Errorf("resolve working directory: %w", err)
	}
	c.Paths.WorkingDir = expanded
	return c, nil
}

// TranscodeTimeout returns the configured transcode timeout. Zero means wait
// for ffmpeg indefinitely.
func (c *Config) TranscodeTimeout() time.Duration {
	if c.Transcode.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Transcode.TimeoutSeconds) * time.Second
}

// WatchDebounce returns the quiet period watch mode waits for before rerunning.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
