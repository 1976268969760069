package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bookreel/internal/synthesis"
)

func newSynthCommand(ctx *commandContext) *cobra.Command {
	var flags chapterFlags

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize chapter audio through the TTS service",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			runner, _, err := ctx.runner()
			if err != nil {
				return err
			}

			selected, missing, err := runner.SelectChapters(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(missing) > 0 {
				fmt.Fprintf(out, "Requested chapters not found: %v\n", missing)
			}
			if len(selected) == 0 {
				fmt.Fprintln(out, "No chapters selected")
				return nil
			}

			result, err := runner.Synthesize(cmd.Context(), selected, opts.Force)
			if err != nil {
				return err
			}
			printSynthesisSummary(cmd, result)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printSynthesisSummary(cmd *cobra.Command, result *synthesis.Result) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"generated", strconv.Itoa(result.Count(synthesis.StatusGenerated))},
		{"skipped", strconv.Itoa(result.Count(synthesis.StatusSkipped))},
		{"suspect", strconv.Itoa(result.Count(synthesis.StatusSuspect))},
		{"failed", strconv.Itoa(result.Count(synthesis.StatusFailed))},
	}
	fmt.Fprintln(out, renderTable([]string{"Status", "Chapters"}, rows, []columnAlignment{alignLeft, alignRight}))

	if suspects := result.Chapters(synthesis.StatusSuspect); len(suspects) > 0 {
		fmt.Fprintf(out, "Suspect chapters (likely truncated): %v\n", suspects)
		fmt.Fprintln(out, "Run `bookreel durations report --regen-list chapters_to_regenerate.txt` after analysis, review the list, then `bookreel synth --chapters-file chapters_to_regenerate.txt`.")
	}
	if failed := result.Chapters(synthesis.StatusFailed); len(failed) > 0 {
		fmt.Fprintf(out, "Failed chapters: %v\n", failed)
	}
}
