package tts

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingExecutor struct {
	binary string
	args   []string
	output []byte
	err    error
}

func (r *recordingExecutor) Run(_ context.Context, binary string, args []string) ([]byte, error) {
	r.binary = binary
	r.args = args
	return r.output, r.err
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestSynthesizeBuildsArgs(t *testing.T) {
	executor := &recordingExecutor{}
	cli, err := New("edge-tts", WithExecutor(executor))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = cli.Synthesize(context.Background(), Request{
		TextFile:   "/chapters/ch_12.txt",
		Voice:      "en-US-AndrewNeural",
		Rate:       "+15%",
		OutputPath: "/audio/ch_12.mp3.partial",
	})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	joined := strings.Join(executor.args, " ")
	if executor.binary != "edge-tts" {
		t.Fatalf("binary %q", executor.binary)
	}
	for _, want := range []string{
		"--file /chapters/ch_12.txt",
		"--voice en-US-AndrewNeural",
		"--write-media /audio/ch_12.mp3.partial",
		"--rate=+15%",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in args: %s", want, joined)
		}
	}
}

func TestSynthesizeOmitsEmptyRate(t *testing.T) {
	executor := &recordingExecutor{}
	cli, _ := New("edge-tts", WithExecutor(executor))
	if err := cli.Synthesize(context.Background(), Request{TextFile: "t", Voice: "v", OutputPath: "o"}); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if strings.Contains(strings.Join(executor.args, " "), "--rate") {
		t.Fatalf("rate flag should be omitted: %v", executor.args)
	}
}

func TestSynthesizeValidatesRequest(t *testing.T) {
	cli, _ := New("edge-tts", WithExecutor(&recordingExecutor{}))
	cases := []Request{
		{Voice: "v", OutputPath: "o"},
		{TextFile: "t", OutputPath: "o"},
		{TextFile: "t", Voice: "v"},
	}
	for _, req := range cases {
		if err := cli.Synthesize(context.Background(), req); err == nil {
			t.Fatalf("expected validation error for %+v", req)
		}
	}
}

func TestSynthesizeWrapsFailureOutput(t *testing.T) {
	executor := &recordingExecutor{output: []byte("rate limited"), err: errors.New("exit status 1")}
	cli, _ := New("edge-tts", WithExecutor(executor))
	err := cli.Synthesize(context.Background(), Request{TextFile: "t", Voice: "v", OutputPath: "o"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
}
