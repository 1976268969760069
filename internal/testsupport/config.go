// Package testsupport provides helpers shared by package tests: temp-dir
// configs, chapter/clip fixtures, and stubbed external binaries.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"bookreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Book.Name = "Test Book"
	cfgVal.Book.CoverImage = filepath.Join(base, "cover.jpg")
	cfgVal.Paths.ChaptersDir = filepath.Join(base, "chapters")
	cfgVal.Paths.AudioDir = filepath.Join(base, "audio")
	cfgVal.Paths.VideoDir = filepath.Join(base, "videos")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(cfgVal.Paths.ChaptersDir, 0o755); err != nil {
		t.Fatalf("mkdir chapters dir: %v", err)
	}
	if err := cfgVal.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithConcurrency overrides the synthesis worker count.
func WithConcurrency(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Synthesis.Concurrency = n
	}
}

// WithClipFloors overrides the clip sanity thresholds.
func WithClipFloors(minBytes int64, minSeconds float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Synthesis.MinClipBytes = minBytes
		b.cfg.Synthesis.MinClipSeconds = minSeconds
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"edge-tts", "ffmpeg", "ffprobe", "rclone"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WriteChapter creates a chapter text file with roughly the requested word
// count, titled on the first line the way the splitter writes it.
func WriteChapter(t testing.TB, cfg *config.Config, index, words int) {
	t.Helper()
	path := filepath.Join(cfg.Paths.ChaptersDir, fmt.Sprintf("ch_%d.txt", index))
	content := fmt.Sprintf("Chapter %d, Test Chapter\n", index)
	for i := 0; i < words; i++ {
		content += "word "
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write chapter %d: %v", index, err)
	}
}
