package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Book describes the book being narrated.
type Book struct {
	Name               string `toml:"name"`
	CoverImage         string `toml:"cover_image"`
	Voice              string `toml:"voice"`
	SpeechRate         string `toml:"speech_rate"`
	TargetVideoMinutes int    `toml:"target_video_minutes"`
	RemoteFolder       string `toml:"remote_folder"`
}

// Paths contains directory configuration for pipeline artifacts.
type Paths struct {
	ChaptersDir string `toml:"chapters_dir"`
	AudioDir    string `toml:"audio_dir"`
	VideoDir    string `toml:"video_dir"`
	StagingDir  string `toml:"staging_dir"`
	LogDir      string `toml:"log_dir"`
}

// Synthesis contains configuration for audio generation.
type Synthesis struct {
	// Concurrency bounds the TTS worker pool. Values above 8 have been
	// observed to provoke silent truncation from the service.
	Concurrency    int     `toml:"concurrency"`
	MaxRetries     int     `toml:"max_retries"`
	TTSBinary      string  `toml:"tts_binary"`
	MinClipBytes   int64   `toml:"min_clip_bytes"`
	MinClipSeconds float64 `toml:"min_clip_seconds"`
	// WordsPerMinute feeds the predicted-duration heuristic used to flag
	// suspect clips.
	WordsPerMinute int     `toml:"words_per_minute"`
	SuspectRatio   float64 `toml:"suspect_ratio"`
}

// Video contains configuration for segment rendering.
type Video struct {
	MaxWorkers    int    `toml:"max_workers"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	MinVideoBytes int64  `toml:"min_video_bytes"`
	MinFreeGiB    int    `toml:"min_free_gib"`
}

// Upload contains configuration for the optional remote sync step.
type Upload struct {
	Enabled      bool   `toml:"enabled"`
	RcloneBinary string `toml:"rclone_binary"`
	Remote       string `toml:"remote"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bookreel.
//
// Configuration sections by subsystem:
//   - Book: title, cover art, voice, and segment duration target
//   - Paths: chapter/audio/video/staging/log directories
//   - Synthesis: TTS worker pool, retries, and clip sanity thresholds
//   - Video: render worker pool and ffmpeg/ffprobe binaries
//   - Upload: rclone remote sync settings
//   - Logging: log format and level
type Config struct {
	Book      Book      `toml:"book"`
	Paths     Paths     `toml:"paths"`
	Synthesis Synthesis `toml:"synthesis"`
	Video     Video     `toml:"video"`
	Upload    Upload    `toml:"upload"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bookreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
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

	projectPath, err := filepath.Abs("bookreel.toml")
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

// EnsureDirectories creates the writable directories the pipeline needs.
// ChaptersDir is deliberately excluded: it is produced by the external
// splitter, and creating an empty one would mask a missing-input error.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AudioDir, c.Paths.VideoDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TargetVideoSeconds returns the segment duration target in seconds.
func (c *Config) TargetVideoSeconds() float64 {
	return float64(c.Book.TargetVideoMinutes) * 60
}

// SpeechRateFactor converts the configured speech rate ("+15%", "-10%")
// into a playback speed multiplier. An unparseable rate counts as 1.0;
// Validate rejects those before any stage runs.
func (c *Config) SpeechRateFactor() float64 {
	rate := strings.TrimSuffix(strings.TrimSpace(c.Book.SpeechRate), "%")
	value, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return 1.0
	}
	factor := 1.0 + value/100
	if factor <= 0 {
		return 1.0
	}
	return factor
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
