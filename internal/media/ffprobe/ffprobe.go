// Package ffprobe wraps the ffprobe binary for media inspection: clip
// durations, file sizes, and cover image pixel dimensions.
package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the inspected file.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Channels  int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Client executes ffprobe inspections.
type Client struct {
	binary string
}

// New constructs a Client; an empty binary falls back to "ffprobe".
func New(binary string) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Client{binary: binary}
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response.
func (c *Client) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, c.binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Duration returns the playable duration of a media file in seconds. It
// prefers the container duration and falls back to the first stream that
// reports one.
func (c *Client) Duration(ctx context.Context, path string) (float64, error) {
	result, err := c.Inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	if d := parseFloat(result.Format.Duration); d > 0 {
		return d, nil
	}
	for _, stream := range result.Streams {
		if d := parseFloat(stream.Duration); d > 0 {
			return d, nil
		}
	}
	return 0, fmt.Errorf("ffprobe: no duration reported for %s", path)
}

// Dimensions returns the pixel width and height of the first video stream;
// ffprobe reports still images as single-frame video streams.
func (c *Client) Dimensions(ctx context.Context, path string) (width, height int, err error) {
	result, err := c.Inspect(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	for _, stream := range result.Streams {
		if strings.EqualFold(stream.CodecType, "video") && stream.Width > 0 && stream.Height > 0 {
			return stream.Width, stream.Height, nil
		}
	}
	return 0, 0, fmt.Errorf("ffprobe: no video stream with dimensions in %s", path)
}

// SizeBytes returns the reported container size in bytes, or 0 when
// unavailable.
func (r Result) SizeBytes() int64 {
	size, err := strconv.ParseInt(strings.TrimSpace(r.Format.Size), 10, 64)
	if err != nil || size < 0 {
		return 0
	}
	return size
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
