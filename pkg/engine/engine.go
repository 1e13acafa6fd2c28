package engine

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hellodevice/flashhello/pkg/esptool"
	"github.com/hellodevice/flashhello/pkg/firmware"
	"github.com/hellodevice/flashhello/pkg/serialport"
)

// Engine runs commands from the interactive surface on worker goroutines and
// sends their output back as replies.
//
// At most one flash runs per port and at most one download runs at a time;
// overlapping requests are rejected with a "Port Busy" or "Download Running"
// error.
type Engine struct {
	Downloader *firmware.Downloader
	Manifest   firmware.Manifest
	Executor   *esptool.Executor
	ListPorts  func() []serialport.Descriptor

	mu          sync.Mutex
	busy        map[string]bool
	downloading bool
	wg          sync.WaitGroup
}

// New returns an Engine wired to real ports.
func New(dl *firmware.Downloader, manifest firmware.Manifest, exec *esptool.Executor) *Engine {
	return &Engine{
		Downloader: dl,
		Manifest:   manifest,
		Executor:   exec,
		ListPorts:  serialport.List,
	}
}

// Run handles commands until cmd is closed or ctx is done, then waits for the
// running workers and closes reply.
func (e *Engine) Run(ctx context.Context, cmd <-chan Command, reply chan<- Reply) {
	defer close(reply)
	defer e.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cmd:
			if !ok {
				return
			}
			logrus.Debugf("Engine: got a command %v", ev.Type)
			e.dispatch(ctx, ev, reply)
		}
	}
}

func (e *Engine) dispatch(ctx context.Context, ev Command, reply chan<- Reply) {
	rep := &replyReporter{ctx: ctx, cmd: ev.Type, reply: reply}

	switch ev.Type {
	case ClearLog:
		rep.send(Reply{EventType: ClearedLog})
		rep.done()

	case RescanPorts:
		e.spawn(func() {
			ports := e.ListPorts()
			rep.send(Reply{EventType: PortsListed, Ports: ports})
			rep.done()
		})

	case DownloadFirmware:
		if !e.acquireDownload() {
			rep.Error("Download Running", "A firmware download is already in progress.")
			rep.done()
			return
		}
		e.spawn(func() {
			defer e.releaseDownload()
			e.Downloader.Download(ctx, e.Manifest, rep)
			rep.done()
		})

	case Flash:
		port := serialport.PathFromLabel(ev.Port)
		layout := ev.Layout.Clone()
		if port != "" && !e.acquirePort(port) {
			rep.Error("Port Busy", "A flash is already running on "+port+".")
			rep.done()
			return
		}
		e.spawn(func() {
			if port != "" {
				defer e.releasePort(port)
			}
			s, err := e.Executor.Flash(ctx, port, layout, rep)
			esptool.Notify(rep, layout, s, err)
			rep.done()
		})

	default:
		logrus.Warnf("Engine: unknown command %v", ev.Type)
		rep.done()
	}
}

func (e *Engine) spawn(f func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		f()
	}()
}

func (e *Engine) acquirePort(port string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy == nil {
		e.busy = map[string]bool{}
	}
	if e.busy[port] {
		return false
	}
	e.busy[port] = true
	return true
}

func (e *Engine) releasePort(port string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.busy, port)
}

func (e *Engine) acquireDownload() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.downloading {
		return false
	}
	e.downloading = true
	return true
}

func (e *Engine) releaseDownload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.downloading = false
}

// replyReporter turns report.Reporter calls into replies for one command.
type replyReporter struct {
	ctx   context.Context
	cmd   CommandType
	reply chan<- Reply
}

func (r *replyReporter) send(rep Reply) {
	rep.Command = r.cmd
	select {
	case r.reply <- rep:
	case <-r.ctx.Done():
	}
}

func (r *replyReporter) done() {
	r.send(Reply{EventType: Done})
}

func (r *replyReporter) Line(text string) {
	r.send(Reply{EventType: LogLine, Text: text})
}

func (r *replyReporter) Info(title, msg string) {
	r.send(Reply{EventType: ShowInfo, Title: title, Text: msg})
}

func (r *replyReporter) Error(title, msg string) {
	r.send(Reply{EventType: ShowError, Title: title, Text: msg})
}
