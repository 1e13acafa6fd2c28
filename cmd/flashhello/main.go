// flashhello flashes HelloDevice firmware onto an ESP32-S3 board through
// esptool. Run without arguments it opens the flashing window.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hellodevice/flashhello/pkg/esptool"
)

var (
	workDir     string
	serialPort  string
	toolCommand string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "flashhello",
	Short:         "Download and flash HelloDevice firmware over a serial port.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
	RunE: runGUI,
}

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&workDir, "dir", "d", ".", "Working directory holding the firmware images.")
	flags.StringVarP(&serialPort, "port", "p", "", "Serial port path (like /dev/cu.usbmodem1101, or COM5).")
	flags.StringVar(&toolCommand, "esptool", esptool.DefaultTool().String(), "Command that runs esptool.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
}

func newExecutor() (*esptool.Executor, error) {
	tool, err := esptool.ParseTool(toolCommand)
	if err != nil {
		return nil, err
	}
	return esptool.NewExecutor(workDir, tool), nil
}

func main() {
	// Interrupting kills a running esptool instead of orphaning it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
