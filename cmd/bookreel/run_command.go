package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookreel/internal/durations"
	"bookreel/internal/rendering"
	"bookreel/internal/synthesis"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags chapterFlags
	var skipUpload bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: synth, analyze, pack, render, upload",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts.SkipUpload = skipUpload

			runner, _, err := ctx.runner()
			if err != nil {
				return err
			}
			report, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Missing) > 0 {
				fmt.Fprintf(out, "Requested chapters not found: %v\n", report.Missing)
			}
			rows := [][]string{
				{"chapters processed", fmt.Sprintf("%d", report.Chapters)},
				{"clips generated", fmt.Sprintf("%d", report.Synthesis.Count(synthesis.StatusGenerated))},
				{"clips suspect", fmt.Sprintf("%d", report.Synthesis.Count(synthesis.StatusSuspect))},
				{"clips failed", fmt.Sprintf("%d", report.Synthesis.Count(synthesis.StatusFailed))},
				{"narration", durations.FormatDuration(report.Durations.TotalSeconds)},
				{"segments planned", fmt.Sprintf("%d", len(report.Plan.Segments))},
				{"videos rendered", fmt.Sprintf("%d", report.Render.Count(rendering.StatusRendered))},
				{"videos failed", fmt.Sprintf("%d", report.Render.Count(rendering.StatusFailed))},
				{"uploaded", yesNo(report.Uploaded)},
			}
			fmt.Fprintln(out, renderTable([]string{"Stage", "Result"}, rows, []columnAlignment{alignLeft, alignRight}))

			if report.UploadErr != nil {
				fmt.Fprintf(out, "Upload failed (local videos are intact): %v\n", report.UploadErr)
			}
			if suspects := report.Synthesis.Chapters(synthesis.StatusSuspect); len(suspects) > 0 {
				fmt.Fprintf(out, "Suspect chapters: %v; review with `bookreel durations report`\n", suspects)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Render locally but skip the remote upload")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
