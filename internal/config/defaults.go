package config

const (
	defaultDoneDir              = "Done"
	defaultProcessedDir         = "Processed"
	defaultErrorDir             = "Error"
	defaultLogDir               = "~/.local/share/mp4press/logs"
	defaultJournalPath          = "~/.local/share/mp4press/journal.db"
	defaultShortSideLimit       = 720
	defaultLongSide             = 1280
	defaultExtension            = ".mp4"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultVideoCodec           = "libx264"
	defaultAudioCodec           = "aac"
	defaultPadColor             = "black"
	defaultMinOutputBytes       = 1
	defaultWatchDebounceSeconds = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogFileMaxMB         = 20
	defaultLogFileMaxBackups    = 5
	defaultLogRetentionDays     = 30
)

// Conflict policies accepted by routing.on_conflict.
const (
	ConflictOverwrite = "overwrite"
	ConflictFail      = "fail"
	ConflictSuffix    = "suffix"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DoneDir:      defaultDoneDir,
			ProcessedDir: defaultProcessedDir,
			ErrorDir:     defaultErrorDir,
			LogDir:       defaultLogDir,
		},
		Policy: Policy{
			ShortSideLimit: defaultShortSideLimit,
			LongSide:       defaultLongSide,
			Extensions:     []string{defaultExtension},
		},
		Transcode: Transcode{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
			PadColor:      defaultPadColor,
		},
		Routing: Routing{
			OnConflict:     ConflictOverwrite,
			MinOutputBytes: defaultMinOutputBytes,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
		Watch: Watch{
			DebounceSeconds: defaultWatchDebounceSeconds,
		},
		Logging: Logging{
			Format:         defaultLogFormat,
			Level:          defaultLogLevel,
			FileMaxMB:      defaultLogFileMaxMB,
			FileMaxBackups: defaultLogFileMaxBackups,
			RetentionDays:  defaultLogRetentionDays,
		},
		Lock: Lock{
			Enabled: true,
		},
	}
}
