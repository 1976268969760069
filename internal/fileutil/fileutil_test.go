package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("dst content %q err %v", data, err)
	}
}

func TestCommitPromotesPartial(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "ch_1.mp3")
	partial := PartialPath(final)
	if err := os.WriteFile(partial, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	if err := Commit(partial, final); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatal("partial should be gone after commit")
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final missing: %v", err)
	}
}

func TestCommitRejectsEmptyPartial(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.mp4")
	partial := PartialPath(final)
	if err := os.WriteFile(partial, nil, 0o644); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	if err := Commit(partial, final); err == nil {
		t.Fatal("expected error for empty partial")
	}
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatal("empty partial should be removed")
	}
	if _, err := os.Stat(final); !os.IsNotExist(err) {
		t.Fatal("final must not exist after failed commit")
	}
}

func TestCommitMissingPartial(t *testing.T) {
	dir := t.TempDir()
	if err := Commit(filepath.Join(dir, "none.partial"), filepath.Join(dir, "none")); err == nil {
		t.Fatal("expected error for missing partial")
	}
}
