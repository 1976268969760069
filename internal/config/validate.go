package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var speechRatePattern = regexp.MustCompile(`^[+-]\d{1,3}%$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBook(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBook() error {
	if c.Book.Voice == "" {
		return errors.New("book.voice must be set")
	}
	if !speechRatePattern.MatchString(c.Book.SpeechRate) {
		return fmt.Errorf("book.speech_rate must look like +15%% or -10%%, got %q", c.Book.SpeechRate)
	}
	if c.Book.TargetVideoMinutes <= 0 {
		return errors.New("book.target_video_minutes must be positive")
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if c.Synthesis.Concurrency < 1 || c.Synthesis.Concurrency > 16 {
		return fmt.Errorf("synthesis.concurrency must be between 1 and 16, got %d (values above 8 risk truncated audio)", c.Synthesis.Concurrency)
	}
	if c.Synthesis.MaxRetries > 10 {
		return fmt.Errorf("synthesis.max_retries must be at most 10, got %d", c.Synthesis.MaxRetries)
	}
	if c.Synthesis.SuspectRatio <= 0 || c.Synthesis.SuspectRatio > 1 {
		return errors.New("synthesis.suspect_ratio must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.MaxWorkers > 64 {
		return fmt.Errorf("video.max_workers must be at most 64, got %d", c.Video.MaxWorkers)
	}
	return nil
}

func (c *Config) validateUpload() error {
	if !c.Upload.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Upload.Remote) == "" {
		return errors.New("upload.remote must be set when upload.enabled is true")
	}
	if strings.TrimSpace(c.Book.RemoteFolder) == "" {
		return errors.New("book.remote_folder must be set when upload.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
