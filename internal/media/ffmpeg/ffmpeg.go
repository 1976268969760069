// Package ffmpeg wraps the ffmpeg binary for the two renders this pipeline
// needs: cropping cover art to even dimensions, and producing a still-image
// video over concatenated chapter audio.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Encoder defines the rendering behaviour the assembler depends on.
type Encoder interface {
	CropToEven(ctx context.Context, inputPath, outputPath string) error
	RenderStillVideo(ctx context.Context, req RenderRequest) error
}

// RenderRequest describes one segment render.
type RenderRequest struct {
	CoverPath  string
	AudioPaths []string
	OutputPath string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).CombinedOutput()
}

// Option configures the CLI client.
type Option func(*CLI)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(c *CLI) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
	exec   Executor
}

// New constructs a CLI client; an empty binary falls back to "ffmpeg".
func New(binary string, opts ...Option) *CLI {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cli := &CLI{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// CropToEven re-encodes an image cropped to even pixel dimensions. The
// video codec rejects odd widths or heights, so covers are normalized once
// and the result cached by the caller.
func (c *CLI) CropToEven(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" || outputPath == "" {
		return errors.New("crop: input and output paths required")
	}
	args := []string{
		"-y",
		"-i", inputPath,
		"-vf", "crop=trunc(iw/2)*2:trunc(ih/2)*2",
		outputPath,
	}
	if output, err := c.exec.Run(ctx, c.binary, args); err != nil {
		return fmt.Errorf("ffmpeg crop: %w: %s", err, tail(output))
	}
	return nil
}

// RenderStillVideo renders one segment: the cover image looped at one frame
// per second for the full duration of the concatenated chapter audio.
func (c *CLI) RenderStillVideo(ctx context.Context, req RenderRequest) error {
	if req.CoverPath == "" {
		return errors.New("render: cover path required")
	}
	if len(req.AudioPaths) == 0 {
		return errors.New("render: at least one audio input required")
	}
	if req.OutputPath == "" {
		return errors.New("render: output path required")
	}

	args := []string{
		"-y",
		"-loop", "1",
		"-framerate", "1",
		"-i", req.CoverPath,
	}
	for _, audio := range req.AudioPaths {
		args = append(args, "-i", audio)
	}

	var filter strings.Builder
	for i := range req.AudioPaths {
		fmt.Fprintf(&filter, "[%d:a]", i+1)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[outa]", len(req.AudioPaths))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "0:v",
		"-map", "[outa]",
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		req.OutputPath,
	)

	if output, err := c.exec.Run(ctx, c.binary, args); err != nil {
		return fmt.Errorf("ffmpeg render: %w: %s", err, tail(output))
	}
	return nil
}

// tail keeps error output readable: ffmpeg prints pages of banner text, and
// the failure reason is at the end.
func tail(output []byte) string {
	const limit = 512
	trimmed := strings.TrimSpace(string(output))
	if len(trimmed) <= limit {
		return trimmed
	}
	return "..." + trimmed[len(trimmed)-limit:]
}

var _ Encoder = (*CLI)(nil)
