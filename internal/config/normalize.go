package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBook(); err != nil {
		return err
	}
	c.normalizeSynthesis()
	c.normalizeVideo()
	c.normalizeUpload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ChaptersDir, err = expandPath(c.Paths.ChaptersDir); err != nil {
		return fmt.Errorf("paths.chapters_dir: %w", err)
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if c.Paths.VideoDir, err = expandPath(c.Paths.VideoDir); err != nil {
		return fmt.Errorf("paths.video_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBook() error {
	c.Book.Name = strings.TrimSpace(c.Book.Name)
	c.Book.Voice = strings.TrimSpace(c.Book.Voice)
	if c.Book.Voice == "" {
		c.Book.Voice = defaultVoice
	}
	c.Book.SpeechRate = strings.TrimSpace(c.Book.SpeechRate)
	if c.Book.SpeechRate == "" {
		c.Book.SpeechRate = defaultSpeechRate
	}
	c.Book.RemoteFolder = strings.Trim(strings.TrimSpace(c.Book.RemoteFolder), "/")
	if c.Book.CoverImage != "" {
		expanded, err := expandPath(c.Book.CoverImage)
		if err != nil {
			return fmt.Errorf("book.cover_image: %w", err)
		}
		c.Book.CoverImage = expanded
	}
	if c.Book.TargetVideoMinutes <= 0 {
		c.Book.TargetVideoMinutes = defaultTargetVideoMinutes
	}
	return nil
}

func (c *Config) normalizeSynthesis() {
	if c.Synthesis.Concurrency <= 0 {
		c.Synthesis.Concurrency = defaultConcurrency
	}
	if c.Synthesis.MaxRetries < 0 {
		c.Synthesis.MaxRetries = defaultMaxRetries
	}
	c.Synthesis.TTSBinary = strings.TrimSpace(c.Synthesis.TTSBinary)
	if c.Synthesis.TTSBinary == "" {
		c.Synthesis.TTSBinary = defaultTTSBinary
	}
	if c.Synthesis.MinClipBytes <= 0 {
		c.Synthesis.MinClipBytes = defaultMinClipBytes
	}
	if c.Synthesis.MinClipSeconds <= 0 {
		c.Synthesis.MinClipSeconds = defaultMinClipSeconds
	}
	if c.Synthesis.WordsPerMinute <= 0 {
		c.Synthesis.WordsPerMinute = defaultWordsPerMinute
	}
	if c.Synthesis.SuspectRatio <= 0 {
		c.Synthesis.SuspectRatio = defaultSuspectRatio
	}
}

func (c *Config) normalizeVideo() {
	if c.Video.MaxWorkers < 0 {
		c.Video.MaxWorkers = 0
	}
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	if c.Video.FFmpegBinary == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)
	if c.Video.FFprobeBinary == "" {
		c.Video.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Video.MinVideoBytes <= 0 {
		c.Video.MinVideoBytes = defaultMinVideoBytes
	}
	if c.Video.MinFreeGiB < 0 {
		c.Video.MinFreeGiB = defaultMinFreeGiB
	}
}

func (c *Config) normalizeUpload() {
	c.Upload.RcloneBinary = strings.TrimSpace(c.Upload.RcloneBinary)
	if c.Upload.RcloneBinary == "" {
		c.Upload.RcloneBinary = defaultRcloneBinary
	}
	c.Upload.Remote = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(c.Upload.Remote), ":"))
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
