// Package rclone wraps the rclone binary for the optional one-way sync of
// rendered videos to a remote. Upload failures never invalidate local
// artifacts; callers report and continue.
package rclone

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Syncer defines the upload behaviour the pipeline depends on.
type Syncer interface {
	Copy(ctx context.Context, localDir, remote, remoteFolder string) error
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

// CLI wraps rclone.
type CLI struct {
	binary string
	exec   Executor
}

// New constructs a CLI client.
func New(binary string, opts ...Option) (*CLI, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("rclone binary required")
	}
	cli := &CLI{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// Copy performs a one-way copy of localDir to remote:remoteFolder. rclone
// copy skips files that already match on the destination, so re-runs only
// transfer new segments.
func (c *CLI) Copy(ctx context.Context, localDir, remote, remoteFolder string) error {
	if localDir == "" {
		return errors.New("rclone: local directory required")
	}
	if remote == "" {
		return errors.New("rclone: remote required")
	}
	destination := remote + ":" + strings.Trim(remoteFolder, "/")

	args := []string{"copy", localDir, destination, "--progress"}
	if output, err := c.exec.Run(ctx, c.binary, args); err != nil {
		return fmt.Errorf("rclone copy to %s: %w: %s", destination, err, strings.TrimSpace(string(output)))
	}
	return nil
}

var _ Syncer = (*CLI)(nil)
