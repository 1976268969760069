package chapters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeChapter(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestScanSortsAndToleratesSparseIndices(t *testing.T) {
	dir := t.TempDir()
	writeChapter(t, dir, "ch_5.txt", "Chapter 5, Five\nbody")
	writeChapter(t, dir, "ch_1.txt", "Chapter 1, One\nbody")
	writeChapter(t, dir, "ch_0004.txt", "Chapter 4, Four\nbody")
	writeChapter(t, dir, "ch_2.txt", "Chapter 2, Two\nbody")
	writeChapter(t, dir, "notes.txt", "not a chapter")
	writeChapter(t, dir, "ch_x.txt", "bad index")

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []int{1, 2, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("scanned %d chapters, want %d", len(got), len(want))
	}
	for i, ch := range got {
		if ch.Index != want[i] {
			t.Fatalf("position %d: index %d, want %d", i, ch.Index, want[i])
		}
	}
}

func TestScanEmptyDirectoryIsNotFound(t *testing.T) {
	_, err := Scan(t.TempDir())
	if !errors.Is(err, ErrNoChapters) {
		t.Fatalf("expected ErrNoChapters, got %v", err)
	}
}

func TestScanRejectsDuplicateIndices(t *testing.T) {
	dir := t.TempDir()
	writeChapter(t, dir, "ch_7.txt", "a")
	writeChapter(t, dir, "ch_007.txt", "b")
	if _, err := Scan(dir); err == nil {
		t.Fatal("expected duplicate index error")
	}
}

func TestTitleAndWordCount(t *testing.T) {
	dir := t.TempDir()
	writeChapter(t, dir, "ch_3.txt", "Chapter 3, The Road\n\nfour words of body text")
	list, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	ch := list[0]
	if got := ch.Title(); got != "Chapter 3, The Road" {
		t.Fatalf("title %q", got)
	}
	words, err := ch.WordCount()
	if err != nil {
		t.Fatalf("word count: %v", err)
	}
	// First line counts too: it is narrated.
	if words != 9 {
		t.Fatalf("word count %d, want 9", words)
	}
}

func TestTitleNormalizesAllCapsHeadings(t *testing.T) {
	dir := t.TempDir()
	writeChapter(t, dir, "ch_5.txt", "CHAPTER 5, THE LONG NIGHT\n\nbody")
	list, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := list[0].Title(); got != "Chapter 5, The Long Night" {
		t.Fatalf("title %q", got)
	}
}

func TestFilterRange(t *testing.T) {
	all := []Chapter{{Index: 1}, {Index: 2}, {Index: 4}, {Index: 5}}
	selected, missing := Filter(all, 2, 4, nil)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing: %v", missing)
	}
	if len(selected) != 2 || selected[0].Index != 2 || selected[1].Index != 4 {
		t.Fatalf("unexpected selection: %+v", selected)
	}
}

func TestFilterOpenEndedRange(t *testing.T) {
	all := []Chapter{{Index: 1}, {Index: 2}, {Index: 3}}
	selected, _ := Filter(all, 2, 0, nil)
	if len(selected) != 2 {
		t.Fatalf("expected chapters 2..3, got %+v", selected)
	}
}

func TestFilterExplicitListWinsAndReportsMissing(t *testing.T) {
	all := []Chapter{{Index: 1}, {Index: 2}, {Index: 4}}
	selected, missing := Filter(all, 1, 2, []int{4, 9, 1, 4})
	if len(selected) != 2 || selected[0].Index != 1 || selected[1].Index != 4 {
		t.Fatalf("unexpected selection: %+v", selected)
	}
	if len(missing) != 1 || missing[0] != 9 {
		t.Fatalf("unexpected missing: %v", missing)
	}
}

func TestClipNaming(t *testing.T) {
	if got := ClipName(12); got != "ch_12.mp3" {
		t.Fatalf("clip name %q", got)
	}
	index, ok := ParseClipIndex("ch_12.mp3")
	if !ok || index != 12 {
		t.Fatalf("parse clip index: %d %v", index, ok)
	}
	if _, ok := ParseClipIndex("ch_12.wav"); ok {
		t.Fatal("wav should not parse as clip")
	}
}
