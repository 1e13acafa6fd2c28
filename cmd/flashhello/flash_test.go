package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/hellodevice/flashhello/pkg/esptool"
)

func TestSelectLayout(t *testing.T) {
	testCases := []struct {
		desc       string
		args       []string
		layoutFile string
		wantName   string
		wantError  bool
	}{
		{desc: "WiFi preset", args: []string{"wifi"}, wantName: "WiFi"},
		{desc: "Cellular preset", args: []string{"CELLULAR"}, wantName: "Cellular"},
		{desc: "Unknown preset", args: []string{"lte-m"}, wantError: true},
		{desc: "No layout", wantError: true},
		{desc: "Layout file", layoutFile: filepath.Join("..", "..", "pkg", "flashmap", "testdata", "oneline.flash_args"), wantName: "oneline"},
		{desc: "Both", args: []string{"wifi"}, layoutFile: filepath.Join("..", "..", "pkg", "flashmap", "testdata", "oneline.flash_args"), wantError: true},
	}

	for _, tc := range testCases {
		flashLayoutFile = tc.layoutFile
		l, err := selectLayout(tc.args)
		if (err != nil) != tc.wantError {
			t.Fatalf("Test %q: failed = %t (%v), want %t", tc.desc, err != nil, err, tc.wantError)
		}
		if err == nil && l.Name != tc.wantName {
			t.Errorf("Test %q: got layout %q, want %q", tc.desc, l.Name, tc.wantName)
		}
	}
	flashLayoutFile = ""
}

func TestFlashDryRun(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"flash", "wifi", "--port", "COM5 - USB Serial Device", "--dry-run", "--esptool", "esptool.py"})
	defer func() {
		rootCmd.SetArgs(nil)
		flashDryRun = false
		serialPort = ""
		toolCommand = esptool.DefaultTool().String()
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("flash --dry-run failed: %v", err)
	}

	got := strings.TrimSpace(out.String())
	wantPrefix := "esptool.py --chip esp32s3 --port COM5 --baud 921600 --before default_reset --after hard_reset write_flash -z --flash_mode dio --flash_freq 80m --flash_size 8MB"
	wantSuffix := "0x0000 HelloDevice.ino.bootloader.bin 0x8000 HelloDevice.ino.partitions.bin 0xe000 boot_app0.bin 0x10000 HelloDevice.ino.bin 0x410000 tinyuf2.bin"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("Got %q, want prefix %q", got, wantPrefix)
	}
	if !strings.HasSuffix(got, wantSuffix) {
		t.Errorf("Got %q, want suffix %q", got, wantSuffix)
	}
}

func TestFlashDryRunNeedsPort(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"flash", "wifi", "--dry-run"})
	defer func() {
		rootCmd.SetArgs(nil)
		flashDryRun = false
	}()

	if err := rootCmd.Execute(); err != esptool.ErrNoPort {
		t.Fatalf("flash --dry-run without a port returned %v, want ErrNoPort", err)
	}
	if out.Len() != 0 {
		t.Errorf("Printed %q without a port", out.String())
	}
}

func TestLayoutFileFlag(t *testing.T) {
	path := filepath.Join("..", "..", "pkg", "flashmap", "testdata", "unordered.flash_args")
	defer func() { guiLayoutFile = "" }()

	for _, c := range []*cobra.Command{rootCmd, guiCmd} {
		guiLayoutFile = ""
		if err := c.ParseFlags([]string{"--layout-file", path}); err != nil {
			t.Fatalf("%s rejected --layout-file: %v", c.Name(), err)
		}
		layouts, err := guiLayouts()
		if err != nil {
			t.Fatalf("%s: cannot load layouts: %v", c.Name(), err)
		}
		if len(layouts) != 3 || layouts[2].Name != "unordered" || layouts[2].FlashMode != "qio" {
			t.Errorf("%s: unexpected layouts %v", c.Name(), layouts)
		}
	}
}
