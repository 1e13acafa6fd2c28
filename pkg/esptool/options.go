package esptool

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/hellodevice/flashhello/pkg/flashmap"
)

// Tool is how esptool is launched: a program and the arguments that precede
// esptool's own, e.g. "python3 -m esptool".
type Tool struct {
	Path string
	Args []string
	// Env is appended to the current environment of the child process.
	Env []string
}

// DefaultTool runs esptool as a Python module.
func DefaultTool() Tool {
	python := "python3"
	if runtime.GOOS == "windows" {
		python = "python"
	}
	return Tool{Path: python, Args: []string{"-m", "esptool"}}
}

// ParseTool splits a command such as "esptool.py" or "python3 -m esptool".
func ParseTool(command string) (Tool, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return Tool{}, fmt.Errorf("empty esptool command")
	}
	return Tool{Path: fields[0], Args: fields[1:]}, nil
}

func (t Tool) String() string {
	return strings.Join(append([]string{t.Path}, t.Args...), " ")
}

// Options are the fixed esptool parameters for HelloDevice boards.
type Options struct {
	Chip      string
	Baud      int
	Before    string
	After     string
	Compress  bool
	FlashMode string
	FlashFreq string
	FlashSize string
}

// DefaultOptions returns the parameters used for every flash.
func DefaultOptions() Options {
	return Options{
		Chip:      "esp32s3",
		Baud:      921600,
		Before:    "default_reset",
		After:     "hard_reset",
		Compress:  true,
		FlashMode: "dio",
		FlashFreq: "80m",
		FlashSize: "8MB",
	}
}

// ForLayout returns o with the flash settings carried by layout applied.
func (o Options) ForLayout(layout flashmap.Layout) Options {
	if layout.FlashMode != "" {
		o.FlashMode = layout.FlashMode
	}
	if layout.FlashFreq != "" {
		o.FlashFreq = layout.FlashFreq
	}
	if layout.FlashSize != "" {
		o.FlashSize = layout.FlashSize
	}
	return o
}

// Args builds esptool's arguments for writing layout through port. The
// address/file pairs come last, in layout order. Files are resolved against
// dir unless dir is the current directory.
func (o Options) Args(port string, layout flashmap.Layout, dir string) []string {
	o = o.ForLayout(layout)
	args := []string{
		"--chip", o.Chip,
		"--port", port,
		"--baud", strconv.Itoa(o.Baud),
		"--before", o.Before,
		"--after", o.After,
		"write_flash",
	}
	if o.Compress {
		args = append(args, "-z")
	}
	args = append(args,
		"--flash_mode", o.FlashMode,
		"--flash_freq", o.FlashFreq,
		"--flash_size", o.FlashSize,
	)
	for _, r := range layout.Regions {
		file := r.File
		if dir != "" && filepath.Clean(dir) != "." {
			file = filepath.Join(dir, r.File)
		}
		args = append(args, r.AddrString(), file)
	}
	return args
}
