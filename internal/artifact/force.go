package artifact

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ForceSet names chapter indices whose skip check is bypassed: they are
// regenerated even when a valid clip already exists.
type ForceSet map[int]struct{}

// Contains reports whether the index is forced.
func (f ForceSet) Contains(index int) bool {
	_, ok := f[index]
	return ok
}

// Indices returns the forced indices in ascending order.
func (f ForceSet) Indices() []int {
	out := make([]int, 0, len(f))
	for index := range f {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// ParseForceSet parses a comma-separated index list ("3,7,12").
func ParseForceSet(spec string) (ForceSet, error) {
	set := ForceSet{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		index, err := strconv.Atoi(part)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid chapter index %q", part)
		}
		set[index] = struct{}{}
	}
	return set, nil
}

// ReadForceFile parses a newline-delimited chapter list, the format the
// duration report writes for regeneration. Blank lines and lines starting
// with # are ignored.
func ReadForceFile(path string) (ForceSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chapter list: %w", err)
	}
	defer file.Close()

	set := ForceSet{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		index, err := strconv.Atoi(line)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid chapter index %q in %s", line, path)
		}
		set[index] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chapter list: %w", err)
	}
	return set, nil
}
