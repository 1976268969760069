package durations

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"bookreel/internal/fileutil"
)

// ExportCSV writes the full index to path for spreadsheet review. The file
// is written atomically so a half-finished export never masquerades as a
// complete one.
func ExportCSV(records []Record, path string) error {
	partial := fileutil.PartialPath(path)
	file, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	writer := csv.NewWriter(file)
	header := []string{"chapter", "title", "duration_seconds", "duration", "size_mb", "word_count", "flag"}
	if err := writer.Write(header); err != nil {
		_ = file.Close()
		fileutil.Discard(partial)
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Chapter),
			record.Title,
			strconv.FormatFloat(record.DurationSeconds, 'f', 2, 64),
			FormatDuration(record.DurationSeconds),
			strconv.FormatFloat(float64(record.SizeBytes)/(1024*1024), 'f', 2, 64),
			strconv.Itoa(record.WordCount),
			record.Flag,
		}
		if err := writer.Write(row); err != nil {
			_ = file.Close()
			fileutil.Discard(partial)
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		fileutil.Discard(partial)
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := file.Close(); err != nil {
		fileutil.Discard(partial)
		return fmt.Errorf("close csv: %w", err)
	}
	return fileutil.Commit(partial, path)
}

// WriteRegenList writes one chapter index per line for every record carrying
// the given flag. The file feeds `bookreel synth --chapters-file` to redo
// just the flagged chapters.
func WriteRegenList(records []Record, flag, path string) (int, error) {
	var builder strings.Builder
	builder.WriteString("# chapters flagged " + flagLabel(flag) + "; regenerate with: bookreel synth --chapters-file " + path + "\n")
	count := 0
	for _, record := range records {
		if record.Flag != flag {
			continue
		}
		builder.WriteString(strconv.Itoa(record.Chapter))
		builder.WriteByte('\n')
		count++
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write regen list: %w", err)
	}
	return count, nil
}

// FormatDuration renders seconds as H:MM:SS for human-facing output.
func FormatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}

func flagLabel(flag string) string {
	if flag == FlagOK {
		return "ok"
	}
	return flag
}
