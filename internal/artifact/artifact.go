// Package artifact centralizes the resume/skip policy: one validity
// predicate per artifact kind, applied uniformly by every stage before it
// does work, plus the force set that bypasses skipping for explicitly
// requested chapters.
package artifact

import (
	"context"
	"fmt"
	"os"
)

// DurationProber measures the playable duration of a media file. Satisfied
// by the ffprobe client; stubbed in tests.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// ClipCheck is the outcome of validating an audio clip.
type ClipCheck struct {
	Valid  bool
	Reason string
}

// ValidClip reports whether an existing audio clip can be trusted: the file
// exists, meets the byte floor, and probes to at least minSeconds of audio.
// A missing file is simply invalid, not an error; probe failures are
// treated as invalid too, since a clip ffprobe cannot read is not usable.
func ValidClip(ctx context.Context, prober DurationProber, path string, minBytes int64, minSeconds float64) ClipCheck {
	info, err := os.Stat(path)
	if err != nil {
		return ClipCheck{Reason: "missing"}
	}
	if info.Size() < minBytes {
		return ClipCheck{Reason: fmt.Sprintf("size %d below floor %d", info.Size(), minBytes)}
	}
	duration, err := prober.Duration(ctx, path)
	if err != nil {
		return ClipCheck{Reason: fmt.Sprintf("unreadable: %v", err)}
	}
	if duration < minSeconds {
		return ClipCheck{Reason: fmt.Sprintf("duration %.1fs below floor %.1fs", duration, minSeconds)}
	}
	return ClipCheck{Valid: true}
}

// ValidVideo reports whether an existing rendered video can be kept: the
// file exists and meets the byte floor. Duration is not probed here; the
// render path commits atomically, so presence implies completeness.
func ValidVideo(path string, minBytes int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() >= minBytes
}
