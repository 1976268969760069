package config

const (
	defaultChaptersDir = "~/.local/share/bookreel/chapters"
	defaultAudioDir    = "~/.local/share/bookreel/audio"
	defaultVideoDir    = "~/.local/share/bookreel/videos"
	defaultStagingDir  = "~/.local/share/bookreel/staging"
	defaultLogDir      = "~/.local/share/bookreel/logs"

	defaultVoice              = "en-US-AndrewNeural"
	defaultSpeechRate         = "+0%"
	defaultTargetVideoMinutes = 120

	defaultConcurrency    = 6
	defaultMaxRetries     = 3
	defaultTTSBinary      = "edge-tts"
	defaultMinClipBytes   = 64 * 1024
	defaultMinClipSeconds = 5.0
	defaultWordsPerMinute = 150
	defaultSuspectRatio   = 0.35

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultMinVideoBytes = 256 * 1024
	defaultMinFreeGiB    = 2

	defaultRcloneBinary = "rclone"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Book: Book{
			Voice:              defaultVoice,
			SpeechRate:         defaultSpeechRate,
			TargetVideoMinutes: defaultTargetVideoMinutes,
		},
		Paths: Paths{
			ChaptersDir: defaultChaptersDir,
			AudioDir:    defaultAudioDir,
			VideoDir:    defaultVideoDir,
			StagingDir:  defaultStagingDir,
			LogDir:      defaultLogDir,
		},
		Synthesis: Synthesis{
			Concurrency:    defaultConcurrency,
			MaxRetries:     defaultMaxRetries,
			TTSBinary:      defaultTTSBinary,
			MinClipBytes:   defaultMinClipBytes,
			MinClipSeconds: defaultMinClipSeconds,
			WordsPerMinute: defaultWordsPerMinute,
			SuspectRatio:   defaultSuspectRatio,
		},
		Video: Video{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			MinVideoBytes: defaultMinVideoBytes,
			MinFreeGiB:    defaultMinFreeGiB,
		},
		Upload: Upload{
			RcloneBinary: defaultRcloneBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
