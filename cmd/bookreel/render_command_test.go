package main

import (
	"testing"

	"bookreel/internal/durations"
	"bookreel/internal/packing"
)

func planWithSegments(t *testing.T) []packing.Segment {
	t.Helper()
	records := []durations.Record{
		{Chapter: 1, DurationSeconds: 50},
		{Chapter: 2, DurationSeconds: 50},
		{Chapter: 3, DurationSeconds: 50},
		{Chapter: 4, DurationSeconds: 50},
	}
	plan, err := packing.Build(records, 100)
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	return plan.Segments
}

func TestFilterSegmentsNoBounds(t *testing.T) {
	segments := planWithSegments(t)
	if got := filterSegments(segments, 0, 0); len(got) != len(segments) {
		t.Fatalf("filtered %d, want all %d", len(got), len(segments))
	}
}

func TestFilterSegmentsOverlap(t *testing.T) {
	// Segments are {1,2} and {3,4}; chapter 2 only touches the first.
	segments := planWithSegments(t)
	got := filterSegments(segments, 0, 2)
	if len(got) != 1 || got[0].EndChapter() != 2 {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	got = filterSegments(segments, 3, 0)
	if len(got) != 1 || got[0].StartChapter() != 3 {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	got = filterSegments(segments, 2, 3)
	if len(got) != 2 {
		t.Fatalf("overlapping range should keep both segments, got %d", len(got))
	}
}
