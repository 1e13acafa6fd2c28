package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hellodevice/flashhello/pkg/esptool"
	"github.com/hellodevice/flashhello/pkg/flashmap"
	"github.com/hellodevice/flashhello/pkg/report"
	"github.com/hellodevice/flashhello/pkg/serialport"
)

var (
	flashLayoutFile string
	flashDryRun     bool
)

var flashCmd = &cobra.Command{
	Use:   "flash [wifi|cellular]",
	Short: "Flash a firmware layout onto the board on --port.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFlash,
}

func init() {
	flashCmd.Flags().StringVar(&flashLayoutFile, "layout-file", "", "Flash the layout from an esptool flash_args file instead of a preset.")
	flashCmd.Flags().BoolVarP(&flashDryRun, "dry-run", "n", false, "Print the esptool command and exit.")
	rootCmd.AddCommand(flashCmd)
}

func selectLayout(args []string) (flashmap.Layout, error) {
	if flashLayoutFile != "" {
		if len(args) > 0 {
			return flashmap.Layout{}, fmt.Errorf("give either a preset name or --layout-file, not both")
		}
		fa, err := flashmap.FromFile(flashLayoutFile)
		if err != nil {
			return flashmap.Layout{}, err
		}
		return fa.Layout, nil
	}
	if len(args) == 0 {
		return flashmap.Layout{}, fmt.Errorf("missing layout name: wifi or cellular")
	}
	return flashmap.ByName(args[0])
}

func runFlash(cmd *cobra.Command, args []string) error {
	layout, err := selectLayout(args)
	if err != nil {
		return err
	}
	exec, err := newExecutor()
	if err != nil {
		return err
	}
	port := serialport.PathFromLabel(serialPort)

	if flashDryRun {
		if strings.TrimSpace(port) == "" {
			return esptool.ErrNoPort
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(exec.Command(port, layout), " "))
		return nil
	}

	rep := report.NewConsole(cmd.OutOrStdout())
	s, err := exec.Flash(cmd.Context(), port, layout, rep)
	esptool.Notify(rep, layout, s, err)
	return err
}
