// Package fileutil provides small file helpers shared by pipeline stages.
package fileutil

import (
	"fmt"
	"io"
	"os"
)

// CopyFile streams src to dst with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// PartialPath returns the temporary path a stage writes before committing.
func PartialPath(final string) string {
	return final + ".partial"
}

// Commit atomically promotes a partial file to its final path. Rename is
// atomic on a single filesystem, so an interrupted run never leaves a final
// path holding a half-written file.
func Commit(partial, final string) error {
	info, err := os.Stat(partial)
	if err != nil {
		return fmt.Errorf("stat partial output: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(partial)
		return fmt.Errorf("partial output %s is empty", partial)
	}
	if err := os.Rename(partial, final); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}
	return nil
}

// Discard removes a partial file, ignoring absence.
func Discard(partial string) {
	_ = os.Remove(partial)
}
