package esptool

import (
	"bufio"
	"context"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
)

func TestScanLines(t *testing.T) {
	testCases := []struct {
		desc string
		in   string
		want []string
	}{
		{
			desc: "Unix newlines",
			in:   "Connecting....\nChip is ESP32-S3\n",
			want: []string{"Connecting....", "Chip is ESP32-S3"},
		},
		{
			desc: "Windows newlines",
			in:   "Connecting....\r\nChip is ESP32-S3\r\n",
			want: []string{"Connecting....", "Chip is ESP32-S3"},
		},
		{
			desc: "Progress redrawn with carriage returns",
			in:   "Writing at 0x00010000... (3 %)\rWriting at 0x00014000... (6 %)\rWrote 1048576 bytes\n",
			want: []string{"Writing at 0x00010000... (3 %)", "Writing at 0x00014000... (6 %)", "Wrote 1048576 bytes"},
		},
		{
			desc: "No trailing newline",
			in:   "Hard resetting via RTS pin...",
			want: []string{"Hard resetting via RTS pin..."},
		},
		{
			desc: "Trailing carriage return",
			in:   "Leaving...\r",
			want: []string{"Leaving..."},
		},
		{
			desc: "Blank lines are kept",
			in:   "a\n\nb\n",
			want: []string{"a", "", "b"},
		},
	}

	for _, tc := range testCases {
		// One byte at a time makes "\r" and "\n" arrive in separate reads.
		scanner := bufio.NewScanner(iotest.OneByteReader(strings.NewReader(tc.in)))
		scanner.Split(scanLines)
		var got []string
		for scanner.Scan() {
			got = append(got, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			t.Fatalf("Test %q: scan failed: %v", tc.desc, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Test %q: unexpected lines (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestStreamExitCode(t *testing.T) {
	for _, code := range []int{0, 1, 2} {
		s, err := Start(context.Background(), helperTool(code), []string{"--port", "COM7"})
		if err != nil {
			t.Fatalf("Start() failed: %v", err)
		}
		var lines []string
		for s.Next() {
			lines = append(lines, s.Line())
		}
		if err := s.Err(); err != nil {
			t.Fatalf("Reading output failed: %v", err)
		}
		got, err := s.Wait()
		if err != nil {
			t.Fatalf("Wait() failed: %v", err)
		}
		if got != code {
			t.Errorf("Got exit code %d, want %d", got, code)
		}
		if len(lines) < 2 || lines[1] != "Serial port COM7" {
			t.Errorf("Unexpected output for exit code %d: %q", code, lines)
		}
	}
}
