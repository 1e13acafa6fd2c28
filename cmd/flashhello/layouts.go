package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hellodevice/flashhello/pkg/flashmap"
)

var layoutsCheck bool

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Print the flash layouts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, l := range flashmap.Presets() {
			fmt.Fprint(out, l)
			if !layoutsCheck {
				continue
			}
			if err := l.CheckFit(workDir, flashmap.FlashSize8MB); err != nil {
				failed++
				color.New(color.FgRed).Fprintf(out, "  %v\n", err)
			} else {
				color.New(color.FgGreen).Fprintln(out, "  all images fit")
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d layouts do not fit", failed)
		}
		return nil
	},
}

func init() {
	layoutsCmd.Flags().BoolVar(&layoutsCheck, "check", false, "Check the images in --dir against the layouts.")
	rootCmd.AddCommand(layoutsCmd)
}
