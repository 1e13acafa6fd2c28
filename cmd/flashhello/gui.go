package main

import (
	"github.com/spf13/cobra"

	"github.com/hellodevice/flashhello/pkg/engine"
	"github.com/hellodevice/flashhello/pkg/firmware"
	"github.com/hellodevice/flashhello/pkg/flashmap"
	"github.com/hellodevice/flashhello/pkg/ui"
)

var guiLayoutFile string

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the flashing window (the default).",
	Args:  cobra.NoArgs,
	RunE:  runGUI,
}

func init() {
	// The root command opens the window too, so it takes the same flag.
	for _, c := range []*cobra.Command{rootCmd, guiCmd} {
		c.Flags().StringVar(&guiLayoutFile, "layout-file", "", "Add a flash button for an esptool flash_args file.")
	}
	rootCmd.AddCommand(guiCmd)
}

func guiLayouts() ([]flashmap.Layout, error) {
	layouts := flashmap.Presets()
	if guiLayoutFile != "" {
		fa, err := flashmap.FromFile(guiLayoutFile)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, fa.Layout)
	}
	return layouts, nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	exec, err := newExecutor()
	if err != nil {
		return err
	}
	layouts, err := guiLayouts()
	if err != nil {
		return err
	}

	eng := engine.New(firmware.NewDownloader(workDir), firmware.DefaultManifest(), exec)
	ui.New(eng, layouts).Run()
	return nil
}
