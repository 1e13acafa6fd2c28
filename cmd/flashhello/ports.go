package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hellodevice/flashhello/pkg/serialport"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ports := serialport.List()
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No serial ports found.")
			return
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
