package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Copy rendered videos to the configured remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cfg, err := ctx.runner()
			if err != nil {
				return err
			}
			if err := runner.Upload(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to %s:%s\n",
				cfg.Paths.VideoDir, cfg.Upload.Remote, cfg.Book.RemoteFolder)
			return nil
		},
	}
}
