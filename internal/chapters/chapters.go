// Package chapters reads the chapter store: one text file per chapter,
// named ch_<index>.txt, produced by the external EPUB splitter. Indices
// may be sparse; the store is read-only from the pipeline's perspective.
package chapters

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bookreel/internal/services"
)

var titleCaser = cases.Title(language.English)

// Chapter identifies one source text unit.
type Chapter struct {
	Index int
	Path  string
}

// ErrNoChapters indicates the chapter directory held no usable files.
var ErrNoChapters = errors.New("no chapter files found")

// Scan lists chapter files in dir in ascending index order. Files that do
// not match the ch_<number>.txt pattern are ignored. Zero-padded and bare
// indices are both accepted; duplicates (ch_7 and ch_007) are an error.
func Scan(dir string) ([]Chapter, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "chapters", "scan", fmt.Sprintf("read chapter directory %s", dir), err)
	}

	byIndex := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		index, ok := ParseIndex(entry.Name())
		if !ok {
			continue
		}
		if existing, dup := byIndex[index]; dup {
			return nil, services.Wrap(services.ErrValidation, "chapters", "scan",
				fmt.Sprintf("chapter %d appears twice (%s and %s)", index, filepath.Base(existing), entry.Name()), nil)
		}
		byIndex[index] = filepath.Join(dir, entry.Name())
	}

	if len(byIndex) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "chapters", "scan", dir, ErrNoChapters)
	}

	out := make([]Chapter, 0, len(byIndex))
	for index, path := range byIndex {
		out = append(out, Chapter{Index: index, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// ParseIndex extracts the chapter index from a ch_<number>.txt filename.
func ParseIndex(name string) (int, bool) {
	stem, found := strings.CutPrefix(name, "ch_")
	if !found {
		return 0, false
	}
	stem, found = strings.CutSuffix(stem, ".txt")
	if !found {
		return 0, false
	}
	index, err := strconv.Atoi(stem)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

// Text returns the chapter's full text.
func (c Chapter) Text() (string, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "chapters", "read", fmt.Sprintf("chapter %d", c.Index), err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "chapters", "read", fmt.Sprintf("chapter %d is empty", c.Index), nil)
	}
	return text, nil
}

// Title returns the chapter's first non-empty line, which the splitter
// writes as "Chapter N, Title". Headings the source sets in all caps are
// normalized to title case for reports.
func (c Chapter) Title() string {
	file, err := os.Open(c.Path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			if line == strings.ToUpper(line) && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
				return titleCaser.String(strings.ToLower(line))
			}
			return line
		}
	}
	return ""
}

// WordCount counts whitespace-separated words in the chapter text. It feeds
// the predicted-duration heuristic for suspect detection.
func (c Chapter) WordCount() (int, error) {
	text, err := c.Text()
	if err != nil {
		return 0, err
	}
	return len(strings.Fields(text)), nil
}

// Filter narrows chapters to [start, end]. Either bound may be zero to leave
// that side open. When explicit is non-empty it wins outright: only the
// listed indices are returned, in ascending order, and missing ones are
// reported in the second return value.
func Filter(all []Chapter, start, end int, explicit []int) (selected []Chapter, missing []int) {
	if len(explicit) > 0 {
		byIndex := make(map[int]Chapter, len(all))
		for _, ch := range all {
			byIndex[ch.Index] = ch
		}
		seen := make(map[int]struct{}, len(explicit))
		for _, index := range explicit {
			if _, dup := seen[index]; dup {
				continue
			}
			seen[index] = struct{}{}
			if ch, ok := byIndex[index]; ok {
				selected = append(selected, ch)
			} else {
				missing = append(missing, index)
			}
		}
		sort.Slice(selected, func(i, j int) bool { return selected[i].Index < selected[j].Index })
		sort.Ints(missing)
		return selected, missing
	}

	for _, ch := range all {
		if start > 0 && ch.Index < start {
			continue
		}
		if end > 0 && ch.Index > end {
			continue
		}
		selected = append(selected, ch)
	}
	return selected, nil
}

// ClipName returns the canonical audio file name for a chapter index.
func ClipName(index int) string {
	return fmt.Sprintf("ch_%d.mp3", index)
}

// ClipPath returns the canonical audio path for a chapter index.
func ClipPath(audioDir string, index int) string {
	return filepath.Join(audioDir, ClipName(index))
}

// ParseClipIndex extracts the chapter index from a ch_<number>.mp3 filename.
func ParseClipIndex(name string) (int, bool) {
	stem, found := strings.CutPrefix(name, "ch_")
	if !found {
		return 0, false
	}
	stem, found = strings.CutSuffix(stem, ".mp3")
	if !found {
		return 0, false
	}
	index, err := strconv.Atoi(stem)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
