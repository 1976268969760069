package services

import "context"

type contextKey string

const (
	chapterKey contextKey = "chapter"
	segmentKey contextKey = "segment"
	stageKey   contextKey = "stage"
	runIDKey   contextKey = "run_id"
)

// WithChapter annotates context with a chapter index.
func WithChapter(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, chapterKey, index)
}

// ChapterFromContext extracts the chapter index if present.
func ChapterFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(chapterKey).(int)
	return v, ok
}

// WithSegment annotates context with a segment identifier, the segment's
// chapter range ("12_17").
func WithSegment(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, segmentKey, id)
}

// SegmentFromContext extracts the segment identifier if present.
func SegmentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(segmentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the pipeline run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
