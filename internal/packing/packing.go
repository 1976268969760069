// Package packing turns the duration index into a deterministic segment
// plan: contiguous runs of chapters whose combined playable time stays at or
// under the target, in strict chapter order. The same index and target
// always produce the same plan, so interrupted runs resume against identical
// segment boundaries.
package packing

import (
	"fmt"
	"path/filepath"
	"sort"

	"bookreel/internal/durations"
	"bookreel/internal/services"
)

// Segment is one planned video: a contiguous, ordered run of chapters.
type Segment struct {
	Chapters     []durations.Record
	TotalSeconds float64
}

// StartChapter returns the first chapter index in the segment.
func (s Segment) StartChapter() int {
	return s.Chapters[0].Chapter
}

// EndChapter returns the last chapter index in the segment.
func (s Segment) EndChapter() int {
	return s.Chapters[len(s.Chapters)-1].Chapter
}

// OutputName returns the segment's video file name, derived from its
// chapter range so re-planning maps onto the same files.
func (s Segment) OutputName() string {
	return fmt.Sprintf("%d_%d.mp4", s.StartChapter(), s.EndChapter())
}

// OutputPath returns the segment's video location under dir.
func (s Segment) OutputPath(dir string) string {
	return filepath.Join(dir, s.OutputName())
}

// Plan is the packer's output: the segments to render plus the chapters
// that could not be packed because they have no usable clip.
type Plan struct {
	Segments []Segment
	Excluded []durations.Record
}

// TotalSeconds returns the combined playable time across all segments.
func (p Plan) TotalSeconds() float64 {
	var total float64
	for _, segment := range p.Segments {
		total += segment.TotalSeconds
	}
	return total
}

// Build packs records into segments no longer than targetSeconds. A segment
// closes before the chapter that would push it past the target; a chapter
// longer than the target on its own becomes a single-chapter segment rather
// than being split or dropped. Failed records are excluded and reported,
// never silently skipped.
func Build(records []durations.Record, targetSeconds float64) (Plan, error) {
	if targetSeconds <= 0 {
		return Plan{}, services.Wrap(services.ErrValidation, "pack", "build", "segment target must be positive", nil)
	}

	ordered := make([]durations.Record, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Chapter < ordered[j].Chapter })

	var plan Plan
	var current Segment
	for _, record := range ordered {
		if record.Flag == durations.FlagFailed {
			plan.Excluded = append(plan.Excluded, record)
			continue
		}
		if len(current.Chapters) > 0 && current.TotalSeconds+record.DurationSeconds > targetSeconds {
			plan.Segments = append(plan.Segments, current)
			current = Segment{}
		}
		current.Chapters = append(current.Chapters, record)
		current.TotalSeconds += record.DurationSeconds
	}
	if len(current.Chapters) > 0 {
		plan.Segments = append(plan.Segments, current)
	}
	return plan, nil
}
