package esptool

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const maxLineSize = 1024 * 1024

// Stream is a running esptool process. Its stdout and stderr are merged and
// read one line at a time with Next and Line, like bufio.Scanner. Wait must
// be called once Next returns false.
type Stream struct {
	ctx     context.Context
	cmd     *exec.Cmd
	out     *os.File
	scanner *bufio.Scanner
	line    string
	err     error
}

// Start launches tool with args. Cancelling ctx kills the process.
func Start(ctx context.Context, tool Tool, args []string) (*Stream, error) {
	argv := append(append([]string{}, tool.Args...), args...)
	cmd := exec.CommandContext(ctx, tool.Path, argv...)
	if len(tool.Env) > 0 {
		cmd.Env = append(os.Environ(), tool.Env...)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, errors.Annotate(err, "cannot create output pipe")
	}
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, errors.Annotatef(err, "cannot start %s", tool.Path)
	}
	// The child holds its own copy of the write end; ours must go so that
	// reads see EOF when the child exits.
	w.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)
	return &Stream{ctx: ctx, cmd: cmd, out: r, scanner: scanner}, nil
}

// Next advances to the next line of output. It blocks until a line is
// available and returns false at end of output.
func (s *Stream) Next() bool {
	if s.scanner.Scan() {
		s.line = s.scanner.Text()
		return true
	}
	s.err = s.scanner.Err()
	return false
}

// Line returns the most recent line read by Next.
func (s *Stream) Line() string {
	return s.line
}

// Err returns the first read error, if any.
func (s *Stream) Err() error {
	return s.err
}

// Wait waits for the process to exit and returns its exit code. The error is
// non-nil only when the exit code is unknown, e.g. after cancellation.
// Output that Next did not consume is discarded.
func (s *Stream) Wait() (int, error) {
	defer s.out.Close()
	// The child cannot exit while it is blocked writing to a full pipe.
	if _, err := io.Copy(io.Discard, s.out); err != nil {
		logrus.Debugf("Discarding esptool output: %v", err)
	}
	err := s.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return -1, errors.Annotate(ctxErr, "esptool was stopped")
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, errors.Trace(err)
}

// scanLines is bufio.ScanLines that also ends a line on a bare '\r'.
// esptool redraws its progress output with carriage returns.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A '\n' may follow in the next read.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
