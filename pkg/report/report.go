// Package report defines how long-running operations talk back to the
// operator: log lines as they happen, plus the occasional notification.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Reporter receives progress from a download or flash session.
type Reporter interface {
	// Line appends one line of output to the operator's log.
	Line(text string)
	// Info notifies the operator of a success.
	Info(title, msg string)
	// Error notifies the operator of a failure.
	Error(title, msg string)
}

// Console writes log lines to a terminal and prints notifications in color.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Line(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

func (c *Console) Info(title, msg string) {
	logrus.Infof("%s: %s", title, msg)
	c.mu.Lock()
	defer c.mu.Unlock()
	color.New(color.FgGreen).Fprintf(c.out, "%s: %s\n", title, msg)
}

func (c *Console) Error(title, msg string) {
	logrus.Errorf("%s: %s", title, msg)
	c.mu.Lock()
	defer c.mu.Unlock()
	color.New(color.FgRed).Fprintf(c.out, "%s: %s\n", title, msg)
}

// Recorder keeps everything it is told. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	Lines  []string
	Infos  []Notice
	Errors []Notice
}

// Notice is a recorded notification.
type Notice struct {
	Title string
	Msg   string
}

func (r *Recorder) Line(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, text)
}

func (r *Recorder) Info(title, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Infos = append(r.Infos, Notice{Title: title, Msg: msg})
}

func (r *Recorder) Error(title, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, Notice{Title: title, Msg: msg})
}
