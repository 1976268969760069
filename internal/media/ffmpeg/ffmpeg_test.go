package ffmpeg

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

func TestRenderStillVideoBuildsConcatFilter(t *testing.T) {
	executor := &recordingExecutor{}
	cli := New("ffmpeg", WithExecutor(executor))

	err := cli.RenderStillVideo(context.Background(), RenderRequest{
		CoverPath:  "/covers/even.jpg",
		AudioPaths: []string{"/audio/ch_1.mp3", "/audio/ch_2.mp3", "/audio/ch_3.mp3"},
		OutputPath: "/videos/1_3.mp4.partial",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	joined := strings.Join(executor.args, " ")
	if !strings.Contains(joined, "[1:a][2:a][3:a]concat=n=3:v=0:a=1[outa]") {
		t.Fatalf("unexpected filter graph: %s", joined)
	}
	if !strings.Contains(joined, "-loop 1 -framerate 1 -i /covers/even.jpg") {
		t.Fatalf("cover input missing: %s", joined)
	}
	if !strings.Contains(joined, "-tune stillimage") || !strings.Contains(joined, "-shortest") {
		t.Fatalf("encoder flags missing: %s", joined)
	}
	if executor.args[len(executor.args)-1] != "/videos/1_3.mp4.partial" {
		t.Fatalf("output path must be last arg: %s", joined)
	}
}

func TestRenderStillVideoValidatesInputs(t *testing.T) {
	cli := New("", WithExecutor(&recordingExecutor{}))
	if err := cli.RenderStillVideo(context.Background(), RenderRequest{CoverPath: "c", OutputPath: "o"}); err == nil {
		t.Fatal("expected error without audio inputs")
	}
	if err := cli.RenderStillVideo(context.Background(), RenderRequest{AudioPaths: []string{"a"}, OutputPath: "o"}); err == nil {
		t.Fatal("expected error without cover")
	}
}

func TestCropToEvenArgs(t *testing.T) {
	executor := &recordingExecutor{}
	cli := New("ffmpeg", WithExecutor(executor))
	if err := cli.CropToEven(context.Background(), "/covers/raw.jpg", "/staging/even.jpg"); err != nil {
		t.Fatalf("crop: %v", err)
	}
	joined := strings.Join(executor.args, " ")
	if !strings.Contains(joined, "crop=trunc(iw/2)*2:trunc(ih/2)*2") {
		t.Fatalf("crop filter missing: %s", joined)
	}
}

func TestRunFailureIncludesOutputTail(t *testing.T) {
	executor := &recordingExecutor{output: []byte("banner\nActual failure reason"), err: errors.New("exit status 1")}
	cli := New("ffmpeg", WithExecutor(executor))
	err := cli.CropToEven(context.Background(), "in.jpg", "out.jpg")
	if err == nil || !strings.Contains(err.Error(), "Actual failure reason") {
		t.Fatalf("expected output tail in error, got %v", err)
	}
}
