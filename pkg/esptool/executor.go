package esptool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"

	"github.com/hellodevice/flashhello/pkg/flashmap"
	"github.com/hellodevice/flashhello/pkg/report"
	"github.com/hellodevice/flashhello/pkg/serialport"
)

// DefaultResetDelay gives the board time to come back up in its bootloader.
const DefaultResetDelay = 500 * time.Millisecond

// StartFunc launches esptool. Start is the real implementation.
type StartFunc func(ctx context.Context, tool Tool, args []string) (*Stream, error)

// Executor runs flash sessions against files in a working directory.
type Executor struct {
	Dir        string
	Tool       Tool
	Options    Options
	Reset      func(port string) error
	ResetDelay time.Duration
	Start      StartFunc
}

// NewExecutor returns an Executor with the stock options and a real reset touch.
func NewExecutor(dir string, tool Tool) *Executor {
	return &Executor{
		Dir:        dir,
		Tool:       tool,
		Options:    DefaultOptions(),
		Reset:      serialport.NewResetter().TouchReset,
		ResetDelay: DefaultResetDelay,
		Start:      Start,
	}
}

// Session is a single flash of one layout through one port.
type Session struct {
	ID       string
	Port     string
	Layout   flashmap.Layout
	Argv     []string
	ExitCode int
	Lines    int
	Elapsed  time.Duration
}

func (e *Executor) dir() string {
	if e.Dir == "" {
		return "."
	}
	return e.Dir
}

// Command returns the full command line that would flash layout through port.
func (e *Executor) Command(port string, layout flashmap.Layout) []string {
	argv := append([]string{e.Tool.Path}, e.Tool.Args...)
	return append(argv, e.Options.Args(port, layout, e.Dir)...)
}

// Flash writes layout to the device on port. Every line esptool prints is
// passed to rep as soon as it is read. No process is started unless a port is
// given and all layout files are present.
func (e *Executor) Flash(ctx context.Context, port string, layout flashmap.Layout, rep report.Reporter) (*Session, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		return nil, ErrNoPort
	}
	if err := layout.Validate(); err != nil {
		return nil, errors.Trace(err)
	}

	rep.Line(fmt.Sprintf("Using serial port: %s", port))
	rep.Line(fmt.Sprintf("Flashing %s firmware...", layout.Name))
	rep.Line("")

	if missing := layout.Missing(e.dir()); len(missing) > 0 {
		return nil, &MissingFilesError{Names: missing}
	}

	args := e.Options.Args(port, layout, e.Dir)
	s := &Session{
		ID:     uuid.NewString(),
		Port:   port,
		Layout: layout.Clone(),
		Argv:   e.Command(port, layout),
	}
	log := logrus.WithFields(logrus.Fields{"session": s.ID, "port": port, "layout": layout.Name})
	started := time.Now()
	defer func() { s.Elapsed = time.Since(started) }()

	if e.Reset != nil {
		if err := e.Reset(port); err != nil {
			log.Warnf("Touch reset failed: %v", err)
			rep.Line(fmt.Sprintf("Touch reset failed: %v", err))
		}
	}
	if e.ResetDelay > 0 {
		select {
		case <-time.After(e.ResetDelay):
		case <-ctx.Done():
			return s, errors.Trace(ctx.Err())
		}
	}

	log.Debugf("Running %q", s.Argv)
	start := e.Start
	if start == nil {
		start = Start
	}
	stream, err := start(ctx, e.Tool, args)
	if err != nil {
		return s, errors.Trace(err)
	}
	for stream.Next() {
		s.Lines++
		rep.Line(stream.Line())
	}
	if err := stream.Err(); err != nil {
		log.Warnf("Reading esptool output failed: %v", err)
		rep.Line(fmt.Sprintf("Reading esptool output failed: %v", err))
	}
	code, err := stream.Wait()
	s.ExitCode = code
	if err != nil {
		return s, errors.Trace(err)
	}
	log.Infof("esptool exited with code %d after %d lines", code, s.Lines)
	if code != 0 {
		return s, &ExitError{Label: layout.Name, Code: code}
	}
	return s, nil
}

// Notify turns the outcome of Flash into a notification for the operator.
func Notify(rep report.Reporter, layout flashmap.Layout, s *Session, err error) {
	if err == nil {
		rep.Info("Success", fmt.Sprintf("%s firmware flashed to %s.", layout.Name, s.Port))
		return
	}
	cause := errors.Cause(err)
	if cause == ErrNoPort {
		rep.Error("No Port Selected", "Please select a serial port before flashing.")
		return
	}
	switch e := cause.(type) {
	case *MissingFilesError:
		rep.Error("Missing Files", fmt.Sprintf("Missing required files:\n%s", strings.Join(e.Names, ", ")))
	case *ExitError:
		rep.Error("Flashing Failed", fmt.Sprintf("%s flashing did not complete successfully.", e.Label))
	default:
		rep.Error("Error", err.Error())
	}
}
