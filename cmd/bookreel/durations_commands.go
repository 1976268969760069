package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookreel/internal/durations"
)

func newDurationsCommand(ctx *commandContext) *cobra.Command {
	durationsCmd := &cobra.Command{
		Use:   "durations",
		Short: "Measure clips and manage the duration index",
	}

	durationsCmd.AddCommand(newDurationsAnalyzeCommand(ctx))
	durationsCmd.AddCommand(newDurationsReportCommand(ctx))

	return durationsCmd
}

func newDurationsAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var flags chapterFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Probe every clip and rebuild the duration index",
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

			summary, err := runner.Analyze(cmd.Context(), selected)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Analyzed %d chapters: %s total, %d suspect, %d failed\n",
				summary.Analyzed, durations.FormatDuration(summary.TotalSeconds), summary.Suspect, summary.Failed)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newDurationsReportCommand(ctx *commandContext) *cobra.Command {
	var csvPath string
	var regenListPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the duration index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := durations.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "Duration index is empty; run `bookreel durations analyze` first")
				return nil
			}

			rows := make([][]string, 0, len(records))
			var totalSeconds float64
			for _, record := range records {
				rows = append(rows, []string{
					strconv.Itoa(record.Chapter),
					record.Title,
					durations.FormatDuration(record.DurationSeconds),
					fmt.Sprintf("%.1f", float64(record.SizeBytes)/(1024*1024)),
					record.Flag,
				})
				totalSeconds += record.DurationSeconds
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Chapter", "Title", "Duration", "MB", "Flag"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft}))
			fmt.Fprintf(out, "Total narration: %s across %d chapters\n", durations.FormatDuration(totalSeconds), len(records))

			if path := strings.TrimSpace(csvPath); path != "" {
				if err := durations.ExportCSV(records, path); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote CSV to %s\n", path)
			}
			if path := strings.TrimSpace(regenListPath); path != "" {
				count, err := durations.WriteRegenList(records, durations.FlagSuspect, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d suspect chapters to %s\n", count, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Also export the index as CSV to this path")
	cmd.Flags().StringVar(&regenListPath, "regen-list", "", "Write suspect chapter indices to this file")
	return cmd
}
