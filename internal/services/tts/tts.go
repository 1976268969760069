// Package tts wraps the external text-to-speech CLI. The service is
// failure-prone in two ways: outright errors, and silent truncation under
// load. This client only reports the former; truncation is caught by the
// synthesis stage's sanity checks on the written clip.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Request describes one synthesis call. TextFile points at the chapter
// text on disk; passing a path instead of inline text keeps argv small for
// long chapters.
type Request struct {
	TextFile   string
	Voice      string
	Rate       string
	OutputPath string
}

// Client defines speech synthesis behaviour.
type Client interface {
	Synthesize(ctx context.Context, req Request) error
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

// CLI wraps an edge-tts style command-line synthesizer.
type CLI struct {
	binary string
	exec   Executor
}

// New constructs a CLI client.
func New(binary string, opts ...Option) (*CLI, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("tts binary required")
	}
	cli := &CLI{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// Synthesize invokes the TTS CLI, writing audio to req.OutputPath. The
// caller is expected to pass a partial path and commit after validation.
func (c *CLI) Synthesize(ctx context.Context, req Request) error {
	if req.TextFile == "" {
		return errors.New("tts: text file required")
	}
	if req.Voice == "" {
		return errors.New("tts: voice required")
	}
	if req.OutputPath == "" {
		return errors.New("tts: output path required")
	}

	args := []string{
		"--file", req.TextFile,
		"--voice", req.Voice,
		"--write-media", req.OutputPath,
	}
	if req.Rate != "" {
		args = append(args, "--rate="+req.Rate)
	}

	if output, err := c.exec.Run(ctx, c.binary, args); err != nil {
		return fmt.Errorf("tts synthesize: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

var _ Client = (*CLI)(nil)
