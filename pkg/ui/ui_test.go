package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"github.com/hellodevice/flashhello/pkg/engine"
	"github.com/hellodevice/flashhello/pkg/flashmap"
	"github.com/hellodevice/flashhello/pkg/serialport"
)

func TestLogBuffer(t *testing.T) {
	b := NewLogBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Append(fmt.Sprintf("line %d", i))
	}
	if got, want := b.String(), "line 3\nline 4\nline 5"; got != want {
		t.Fatalf("Got %q, want %q", got, want)
	}
	b.Clear()
	if b.Len() != 0 || b.String() != "" {
		t.Fatalf("Log not empty after Clear(): %q", b.String())
	}
	if got := b.Append("after clear"); got != "after clear" {
		t.Fatalf("Got %q after clearing", got)
	}
}

func TestHandleReplies(t *testing.T) {
	a := test.NewTempApp(t)
	u := newUI(a, nil, flashmap.Presets())

	u.handle(engine.Reply{EventType: engine.PortsListed, Ports: []serialport.Descriptor{
		{Path: "COM5", Description: "USB JTAG/serial debug unit"},
		{Path: "COM3", Description: "n/a"},
	}})
	if got := u.portSelect.Selected; got != "COM5 - USB JTAG/serial debug unit" {
		t.Fatalf("First port not selected after rescan: %q", got)
	}
	if len(u.portSelect.Options) != 2 {
		t.Fatalf("Got %d port options, want 2", len(u.portSelect.Options))
	}

	u.handle(engine.Reply{EventType: engine.PortsListed})
	if u.portSelect.Selected != "" || len(u.portSelect.Options) != 0 {
		t.Fatalf("Selection not cleared when no ports are found: %q", u.portSelect.Selected)
	}

	u.handle(engine.Reply{EventType: engine.LogLine, Text: "Connecting...."})
	u.handle(engine.Reply{EventType: engine.LogLine, Text: "Chip is ESP32-S3"})
	if got := u.logGrid.Text(); !strings.Contains(got, "Connecting....\nChip is ESP32-S3") {
		t.Fatalf("Unexpected log text %q", got)
	}

	u.handle(engine.Reply{EventType: engine.ClearedLog})
	if got := u.logGrid.Text(); got != "" {
		t.Fatalf("Log not cleared: %q", got)
	}
}

func TestSendWhenEngineIsStalled(t *testing.T) {
	a := test.NewTempApp(t)
	u := newUI(a, nil, flashmap.Presets())
	u.sendTimeout = 10 * time.Millisecond

	for i := 0; i < cap(u.cmd); i++ {
		u.send(engine.Command{Type: engine.RescanPorts})
	}
	if u.win.Canvas().Overlays().Top() != nil {
		t.Fatalf("Dialog shown while the queue still had room")
	}

	u.send(engine.Command{Type: engine.Flash})
	if len(u.cmd) != cap(u.cmd) {
		t.Fatalf("Got %d queued commands, want %d", len(u.cmd), cap(u.cmd))
	}
	if u.win.Canvas().Overlays().Top() == nil {
		t.Fatalf("Dropped command was not reported to the operator")
	}
}
