package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hellodevice/flashhello/pkg/firmware"
	"github.com/hellodevice/flashhello/pkg/report"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the firmware images into the working directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep := report.NewConsole(cmd.OutOrStdout())
		results := firmware.NewDownloader(workDir).Download(cmd.Context(), firmware.DefaultManifest(), rep)
		if failed := firmware.Failed(results); len(failed) > 0 {
			return fmt.Errorf("%d of %d downloads failed", len(failed), len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
