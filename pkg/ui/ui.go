package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/hellodevice/flashhello/pkg/engine"
	"github.com/hellodevice/flashhello/pkg/flashmap"
	"github.com/hellodevice/flashhello/pkg/serialport"
)

// UI is the flashing window. All widget access happens on the fyne thread;
// engine replies are marshalled there with fyne.Do.
type UI struct {
	app    fyne.App
	win    fyne.Window
	eng    *engine.Engine
	cmd    chan engine.Command
	reply  chan engine.Reply
	cancel context.CancelFunc

	// sendTimeout bounds how long a button press waits for the engine.
	sendTimeout time.Duration

	portSelect *widget.Select
	logGrid    *widget.TextGrid
	logScroll  *container.Scroll
	log        *LogBuffer
}

// New creates the window for eng. One flash button is shown per layout.
func New(eng *engine.Engine, layouts []flashmap.Layout) *UI {
	return newUI(app.NewWithID("com.hellodevice.flashhello"), eng, layouts)
}

func newUI(a fyne.App, eng *engine.Engine, layouts []flashmap.Layout) *UI {
	u := &UI{
		app:   a,
		win:   a.NewWindow("Flash Hello Firmware"),
		eng:   eng,
		cmd:   make(chan engine.Command, 16),
		reply: make(chan engine.Reply, 256),
		log:   NewLogBuffer(DefaultMaxLines),

		sendTimeout: 2 * time.Second,
	}

	u.portSelect = widget.NewSelect(nil, nil)
	u.portSelect.PlaceHolder = "Select serial port"

	u.logGrid = widget.NewTextGrid()
	u.logScroll = container.NewVScroll(u.logGrid)

	downloadButton := widget.NewButtonWithIcon("Download Firmware", theme.DownloadIcon(), func() {
		u.send(engine.Command{Type: engine.DownloadFirmware})
	})
	rescanButton := widget.NewButtonWithIcon("Rescan Ports", theme.ViewRefreshIcon(), func() {
		u.send(engine.Command{Type: engine.RescanPorts})
	})
	topRow := container.NewHBox(downloadButton, widget.NewLabel("Serial port:"), rescanButton)

	flashRow := container.NewHBox()
	for _, l := range layouts {
		layout := l.Clone()
		flashRow.Add(widget.NewButtonWithIcon("Flash "+layout.Name, theme.UploadIcon(), func() {
			u.send(engine.Command{Type: engine.Flash, Port: u.portSelect.Selected, Layout: layout})
		}))
	}
	flashRow.Add(widget.NewButtonWithIcon("Clear Log", theme.DeleteIcon(), func() {
		u.send(engine.Command{Type: engine.ClearLog})
	}))

	top := container.NewVBox(
		container.NewBorder(nil, nil, topRow, nil, u.portSelect),
		flashRow,
	)
	u.win.SetContent(container.NewBorder(top, nil, nil, nil, u.logScroll))
	u.win.Resize(fyne.NewSize(900, 600))
	return u
}

func (u *UI) send(c engine.Command) {
	select {
	case u.cmd <- c:
		return
	default:
	}
	select {
	case u.cmd <- c:
	case <-time.After(u.sendTimeout):
		logrus.Warnf("Dropping %v: engine is not keeping up", c.Type)
		u.showError("Busy", fmt.Sprintf("%v was not started because earlier actions are still queued. Try again.", c.Type))
	}
}

func (u *UI) showError(title, msg string) {
	content := container.NewHBox(widget.NewIcon(theme.ErrorIcon()), widget.NewLabel(msg))
	dialog.NewCustom(title, "OK", content, u.win).Show()
}

// Run shows the window and blocks until it is closed.
func (u *UI) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	go u.eng.Run(ctx, u.cmd, u.reply)
	go u.pump()

	u.win.SetOnClosed(func() {
		close(u.cmd)
		u.cancel()
	})
	u.send(engine.Command{Type: engine.RescanPorts})
	u.win.ShowAndRun()
}

func (u *UI) pump() {
	for r := range u.reply {
		fyne.Do(func() { u.handle(r) })
	}
}

// handle applies one reply to the widgets. It must run on the fyne thread.
func (u *UI) handle(r engine.Reply) {
	switch r.EventType {
	case engine.LogLine:
		u.logGrid.SetText(u.log.Append(r.Text))
		u.logScroll.ScrollToBottom()
	case engine.ClearedLog:
		u.log.Clear()
		u.logGrid.SetText("")
	case engine.PortsListed:
		u.setPorts(r.Ports)
	case engine.ShowInfo:
		dialog.ShowInformation(r.Title, r.Text, u.win)
	case engine.ShowError:
		u.showError(r.Title, r.Text)
	case engine.Done:
		logrus.Debugf("%v finished", r.Command)
	}
}

func (u *UI) setPorts(ports []serialport.Descriptor) {
	options := make([]string, 0, len(ports))
	for _, p := range ports {
		options = append(options, p.String())
	}
	u.portSelect.Options = options
	if len(options) > 0 {
		u.portSelect.SetSelected(options[0])
	} else {
		u.portSelect.ClearSelected()
	}
	u.portSelect.Refresh()
}
