package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValidAfterNormalize(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize default config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.AudioDir) {
		t.Fatalf("expected absolute audio dir, got %q", cfg.Paths.AudioDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Synthesis.Concurrency != defaultConcurrency {
		t.Fatalf("concurrency %d, want default %d", cfg.Synthesis.Concurrency, defaultConcurrency)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[book]",
		`name = "Example Book"`,
		`voice = "en-US-AndrewNeural"`,
		`speech_rate = "+15%"`,
		"target_video_minutes = 90",
		"",
		"[paths]",
		`chapters_dir = "` + filepath.Join(dir, "chapters") + `"`,
		`audio_dir = "` + filepath.Join(dir, "audio") + `"`,
		`video_dir = "` + filepath.Join(dir, "videos") + `"`,
		`staging_dir = "` + filepath.Join(dir, "staging") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"",
		"[synthesis]",
		"concurrency = 4",
		"",
		"[upload]",
		"enabled = false",
		`remote = "gdrive:"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Book.TargetVideoMinutes != 90 {
		t.Fatalf("target minutes %d, want 90", cfg.Book.TargetVideoMinutes)
	}
	if cfg.Synthesis.Concurrency != 4 {
		t.Fatalf("concurrency %d, want 4", cfg.Synthesis.Concurrency)
	}
	if cfg.Upload.Remote != "gdrive" {
		t.Fatalf("remote %q, want trailing colon stripped", cfg.Upload.Remote)
	}
	if got := cfg.TargetVideoSeconds(); got != 5400 {
		t.Fatalf("target seconds %v, want 5400", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero concurrency", func(c *Config) { c.Synthesis.Concurrency = 0 }},
		{"excessive concurrency", func(c *Config) { c.Synthesis.Concurrency = 32 }},
		{"bad speech rate", func(c *Config) { c.Book.SpeechRate = "fast" }},
		{"bad suspect ratio", func(c *Config) { c.Synthesis.SuspectRatio = 1.5 }},
		{"upload without remote", func(c *Config) {
			c.Upload.Enabled = true
			c.Upload.Remote = ""
		}},
		{"bad log format", func(c *Config) { c.Logging.Format = "yaml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config should exist")
	}
	if cfg.Book.Voice == "" {
		t.Fatal("sample config should carry a voice")
	}
}

func TestEnsureDirectoriesSkipsChapters(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths = Paths{
		ChaptersDir: filepath.Join(dir, "chapters"),
		AudioDir:    filepath.Join(dir, "audio"),
		VideoDir:    filepath.Join(dir, "videos"),
		StagingDir:  filepath.Join(dir, "staging"),
		LogDir:      filepath.Join(dir, "logs"),
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.AudioDir); err != nil {
		t.Fatalf("audio dir missing: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.ChaptersDir); !os.IsNotExist(err) {
		t.Fatal("chapters dir must not be created implicitly")
	}
}

func TestSpeechRateFactor(t *testing.T) {
	cases := []struct {
		rate string
		want float64
	}{
		{"+0%", 1.0},
		{"+15%", 1.15},
		{"-10%", 0.9},
		{"garbage", 1.0},
	}
	for _, tc := range cases {
		cfg := Default()
		cfg.Book.SpeechRate = tc.rate
		if got := cfg.SpeechRateFactor(); got != tc.want {
			t.Fatalf("SpeechRateFactor(%q) = %v, want %v", tc.rate, got, tc.want)
		}
	}
}
