package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bookreel/internal/packing"
	"bookreel/internal/rendering"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var start, end int

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render packed segments into still-image videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start < 0 || end < 0 {
				return errors.New("chapter bounds must be positive")
			}
			if start > 0 && end > 0 && start > end {
				return errors.New("--start must not exceed --end")
			}

			runner, _, err := ctx.runner()
			if err != nil {
				return err
			}
			plan, err := runner.Pack(cmd.Context())
			if err != nil {
				return err
			}
			plan.Segments = filterSegments(plan.Segments, start, end)
			out := cmd.OutOrStdout()
			if len(plan.Segments) == 0 {
				fmt.Fprintln(out, "Nothing to render; run `bookreel durations analyze` first")
				return nil
			}

			result, err := runner.Render(cmd.Context(), plan)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Rendered %d, skipped %d, failed %d of %d segments\n",
				result.Count(rendering.StatusRendered),
				result.Count(rendering.StatusSkipped),
				result.Count(rendering.StatusFailed),
				len(plan.Segments))
			for _, outcome := range result.Outcomes {
				if outcome.Status == rendering.StatusFailed {
					fmt.Fprintf(out, "  %s failed: %s\n", outcome.Segment.OutputName(), outcome.Reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "Only render segments containing this chapter or later")
	cmd.Flags().IntVar(&end, "end", 0, "Only render segments containing this chapter or earlier")
	return cmd
}

// filterSegments keeps segments overlapping the [start, end] chapter range.
// Segment boundaries never move: narrowing the range only narrows which
// planned files get rendered.
func filterSegments(segments []packing.Segment, start, end int) []packing.Segment {
	if start == 0 && end == 0 {
		return segments
	}
	out := make([]packing.Segment, 0, len(segments))
	for _, segment := range segments {
		if start > 0 && segment.EndChapter() < start {
			continue
		}
		if end > 0 && segment.StartChapter() > end {
			continue
		}
		out = append(out, segment)
	}
	return out
}
