package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"bookreel/internal/artifact"
	"bookreel/internal/pipeline"
)

// chapterFlags is the shared chapter-selection surface: a range, an explicit
// list, or a file of indices (one per line, # comments allowed). The list
// and file forms also force regeneration of the named chapters, which is
// the suspect-clip redo workflow.
type chapterFlags struct {
	start        int
	end          int
	chaptersSpec string
	chaptersFile string
}

func (f *chapterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.start, "start", 0, "First chapter index to process")
	cmd.Flags().IntVar(&f.end, "end", 0, "Last chapter index to process")
	cmd.Flags().StringVar(&f.chaptersSpec, "chapters", "", "Comma-separated chapter indices to regenerate")
	cmd.Flags().StringVar(&f.chaptersFile, "chapters-file", "", "File of chapter indices to regenerate, one per line")
}

// options translates the flags into pipeline run options. Explicitly listed
// chapters are both the selection and the force set.
func (f *chapterFlags) options() (pipeline.RunOptions, error) {
	opts := pipeline.RunOptions{Start: f.start, End: f.end}
	if f.start < 0 || f.end < 0 {
		return opts, errors.New("chapter bounds must be positive")
	}
	if f.start > 0 && f.end > 0 && f.start > f.end {
		return opts, errors.New("--start must not exceed --end")
	}

	force := artifact.ForceSet{}
	if spec := strings.TrimSpace(f.chaptersSpec); spec != "" {
		parsed, err := artifact.ParseForceSet(spec)
		if err != nil {
			return opts, err
		}
		for index := range parsed {
			force[index] = struct{}{}
		}
	}
	if path := strings.TrimSpace(f.chaptersFile); path != "" {
		parsed, err := artifact.ReadForceFile(path)
		if err != nil {
			return opts, err
		}
		for index := range parsed {
			force[index] = struct{}{}
		}
	}
	if len(force) > 0 {
		opts.Chapters = force.Indices()
		opts.Force = force
	}
	return opts, nil
}
