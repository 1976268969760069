package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bookreel/internal/durations"
	"bookreel/internal/packing"
)

func newPackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pack",
		Short: "Preview how chapters pack into video segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cfg, err := ctx.runner()
			if err != nil {
				return err
			}
			plan, err := runner.Pack(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(plan.Segments) == 0 {
				fmt.Fprintln(out, "Nothing to pack; run `bookreel durations analyze` first")
				return nil
			}

			printPlan(cmd, plan)
			fmt.Fprintf(out, "Target segment length: %s\n", durations.FormatDuration(cfg.TargetVideoSeconds()))
			return nil
		},
	}
}

func printPlan(cmd *cobra.Command, plan packing.Plan) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(plan.Segments))
	for i, segment := range plan.Segments {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%d-%d", segment.StartChapter(), segment.EndChapter()),
			strconv.Itoa(len(segment.Chapters)),
			durations.FormatDuration(segment.TotalSeconds),
			segment.OutputName(),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Segment", "Chapters", "Count", "Duration", "Output"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft}))
	fmt.Fprintf(out, "%d segments, %s of narration\n", len(plan.Segments), durations.FormatDuration(plan.TotalSeconds()))

	if len(plan.Excluded) > 0 {
		excluded := make([]int, 0, len(plan.Excluded))
		for _, record := range plan.Excluded {
			excluded = append(excluded, record.Chapter)
		}
		fmt.Fprintf(out, "Excluded (no usable clip): %v\n", excluded)
	}
}
